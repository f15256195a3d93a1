package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"schooladmin/backend/services/admin-gateway/internal/http/middleware"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeRetryable is the error panel payload: the view shows message and a retry action.
func writeRetryable(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message, "retryable": true})
}

// adminID is the authenticated administrator; selections are kept per administrator.
func adminID(r *http.Request) string {
	auth, _ := middleware.AuthFromContext(r.Context())
	return auth.UserID
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
}

// NewHealthHandler returns GET /health handler.
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
