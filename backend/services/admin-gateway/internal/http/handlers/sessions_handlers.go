package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"schooladmin/backend/services/admin-gateway/internal/models"
	"schooladmin/backend/services/admin-gateway/internal/registry"
)

// SessionRegistry is the registry surface the handlers need.
type SessionRegistry interface {
	Sessions() []models.Session
	Selected(ctx context.Context, user string) (models.Session, bool)
	Select(ctx context.Context, user, id string) (models.Session, error)
	Reload(ctx context.Context)
}

// SessionsHandlers serves the academic session list and selection.
type SessionsHandlers struct {
	registry SessionRegistry
	logger   *zap.Logger
}

// NewSessionsHandlers returns handler.
func NewSessionsHandlers(registry SessionRegistry, logger *zap.Logger) *SessionsHandlers {
	return &SessionsHandlers{registry: registry, logger: logger}
}

type sessionsResponse struct {
	Sessions []models.Session `json:"sessions"`
	Selected *models.Session  `json:"selected"`
}

func (h *SessionsHandlers) snapshot(r *http.Request) sessionsResponse {
	resp := sessionsResponse{Sessions: h.registry.Sessions()}
	if resp.Sessions == nil {
		resp.Sessions = []models.Session{}
	}
	if s, ok := h.registry.Selected(r.Context(), adminID(r)); ok {
		resp.Selected = &s
	}
	return resp
}

// List handles GET /api/sessions.
func (h *SessionsHandlers) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot(r))
}

// Reload handles POST /api/sessions/reload. Load failures show up as an empty list.
func (h *SessionsHandlers) Reload(w http.ResponseWriter, r *http.Request) {
	h.registry.Reload(r.Context())
	writeJSON(w, http.StatusOK, h.snapshot(r))
}

type selectRequest struct {
	ID models.ID `json:"id"`
}

// Select handles PUT /api/sessions/selected for the calling administrator only.
func (h *SessionsHandlers) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(r, &req); err != nil || req.ID.IsZero() {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	session, err := h.registry.Select(r.Context(), adminID(r), strings.TrimSpace(req.ID.String()))
	if errors.Is(err, registry.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("select session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to select session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"selected": session})
}
