package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"schooladmin/backend/services/admin-gateway/internal/http/middleware"
	"schooladmin/backend/services/admin-gateway/internal/models"
)

// SelectionSource provides the selection sent to a view right after it connects.
type SelectionSource interface {
	Selected(ctx context.Context, user string) (models.Session, bool)
}

// Server upgrades HTTP requests into session event streams.
type Server struct {
	hub          *Hub
	selection    SelectionSource
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	baseCtx      context.Context
}

// NewServer builds the websocket endpoint. baseCtx ends every stream on shutdown.
func NewServer(baseCtx context.Context, hub *Hub, selection SelectionSource, allowedOrigins []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub:          hub,
		selection:    selection,
		logger:       logger,
		writeTimeout: 10 * time.Second,
		baseCtx:      baseCtx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// HandleWS is the handler for GET /ws/sessions. It runs behind the auth middleware and
// streams the caller's own selection only.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	current, hasCurrent := s.selection.Selected(r.Context(), auth.UserID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), auth.UserID, conn, s.writeTimeout, s.logger)
	if hasCurrent {
		if payload, err := json.Marshal(Event{Type: EventSessionSelected, Session: &current}); err == nil {
			client.enqueue(payload)
		}
	}
	s.hub.add(client)
	s.logger.Info("view connected", zap.String("client_id", client.id), zap.String("user_id", auth.UserID))

	go client.run(s.baseCtx, s.hub)
}

// originChecker allows every origin when the list is empty.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
