package httpserver

import (
	"net/http"

	"schooladmin/backend/services/admin-gateway/internal/http/handlers"
	"schooladmin/backend/services/admin-gateway/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	SessionsHandlers *handlers.SessionsHandlers
	FeesHandlers     *handlers.FeesHandlers
	HealthHandler    http.HandlerFunc
	Metrics          http.Handler
	SessionEvents    http.HandlerFunc
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", method(http.MethodGet, deps.HealthHandler))
	if deps.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, deps.Metrics))
	}

	authenticated := func(handler http.HandlerFunc) http.Handler {
		return middleware.Chain(handler, authMiddleware)
	}

	if deps.SessionEvents != nil {
		mux.Handle("/ws/sessions", method(http.MethodGet, authenticated(deps.SessionEvents)))
	}

	mux.Handle("/api/sessions", method(http.MethodGet, authenticated(deps.SessionsHandlers.List)))
	mux.Handle("/api/sessions/reload", method(http.MethodPost, authenticated(deps.SessionsHandlers.Reload)))
	mux.Handle("/api/sessions/selected", method(http.MethodPut, authenticated(deps.SessionsHandlers.Select)))

	mux.Handle("/api/students/{id}/fees", method(http.MethodGet, authenticated(deps.FeesHandlers.StudentFees)))
	mux.Handle("/api/students/{id}/fees/ensure", method(http.MethodPost, authenticated(deps.FeesHandlers.EnsureFees)))
	mux.Handle("/api/students/{id}/payments", method(http.MethodPost, authenticated(deps.FeesHandlers.RecordPayment)))

	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
