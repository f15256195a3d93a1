// Package registry keeps the list of academic sessions and the session each administrator
// currently works in. Every session-scoped view reads the selection to decide which records
// to fetch.
package registry

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

// ErrSessionNotFound is returned when selecting an id that is not in the loaded list.
var ErrSessionNotFound = errors.New("registry: session not found")

// Lister fetches raw session records from the backend.
type Lister interface {
	ListSessions(ctx context.Context) ([]map[string]any, error)
}

// SelectionStore persists each administrator's selected session id across restarts.
type SelectionStore interface {
	Get(ctx context.Context, user string) (string, error)
	Set(ctx context.Context, user, id string) error
}

// Listener is called with the user whose selection changed and the new selection,
// or nil when it was cleared.
type Listener func(user string, selected *models.Session)

// Registry is safe for concurrent use. Selections are kept per user.
type Registry struct {
	lister Lister
	store  SelectionStore
	logger *zap.Logger

	// changeMu orders apply, persist and notify across all selection changes.
	changeMu sync.Mutex

	mu        sync.RWMutex
	sessions  []models.Session
	selected  map[string]models.Session
	listeners map[int]Listener
	nextID    int
}

type change struct {
	user    string
	session *models.Session
}

// New builds an empty registry; call Load to fetch the sessions. store may be nil.
func New(lister Lister, store SelectionStore, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		lister:    lister,
		store:     store,
		logger:    logger,
		selected:  make(map[string]models.Session),
		listeners: make(map[int]Listener),
	}
}

// Load replaces the session list from the backend. Failures are logged and leave an
// empty list with every selection untouched; they are never returned.
func (r *Registry) Load(ctx context.Context) {
	records, err := r.lister.ListSessions(ctx)
	if err != nil {
		r.logger.Warn("failed to load sessions", zap.Error(err))
		r.mu.Lock()
		r.sessions = nil
		r.mu.Unlock()
		return
	}
	sessions := NormalizeAll(records)

	r.changeMu.Lock()
	defer r.changeMu.Unlock()

	r.mu.Lock()
	r.sessions = sessions
	var changes []change
	for user, prev := range r.selected {
		if s, ok := r.find(prev.ID); ok {
			r.selected[user] = s
			continue
		}
		next := r.first()
		if next == nil {
			delete(r.selected, user)
		} else {
			r.selected[user] = *next
		}
		changes = append(changes, change{user: user, session: next})
	}
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	r.logger.Info("sessions loaded", zap.Int("count", len(sessions)), zap.Int("replaced_selections", len(changes)))
	for _, c := range changes {
		r.persist(ctx, c.user, c.session)
		notify(listeners, c.user, c.session)
	}
}

// Reload re-fetches the session list.
func (r *Registry) Reload(ctx context.Context) {
	r.Load(ctx)
}

// Select makes the session with the given id current for user.
func (r *Registry) Select(ctx context.Context, user, id string) (models.Session, error) {
	r.changeMu.Lock()
	defer r.changeMu.Unlock()

	r.mu.Lock()
	s, ok := r.find(id)
	if !ok {
		r.mu.Unlock()
		return models.Session{}, ErrSessionNotFound
	}
	prev, had := r.selected[user]
	changed := !had || prev.ID != s.ID
	r.selected[user] = s
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	r.persist(ctx, user, &s)
	if changed {
		r.logger.Info("session selected", zap.String("user_id", user), zap.String("session_id", s.ID), zap.String("name", s.Name))
		notify(listeners, user, &s)
	}
	return s, nil
}

// Sessions returns a copy of the loaded list in server order.
func (r *Registry) Sessions() []models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Selected returns user's current session, false when none can be chosen. A user
// without a selection gets the stored one when it is still listed, otherwise the first
// session.
func (r *Registry) Selected(ctx context.Context, user string) (models.Session, bool) {
	r.mu.RLock()
	s, ok := r.selected[user]
	r.mu.RUnlock()
	if ok {
		return s, true
	}

	r.changeMu.Lock()
	defer r.changeMu.Unlock()

	restored := r.restoredID(ctx, user)

	r.mu.Lock()
	if s, ok := r.selected[user]; ok {
		r.mu.Unlock()
		return s, true
	}
	next, found := r.find(restored)
	if !found {
		first := r.first()
		if first == nil {
			r.mu.Unlock()
			return models.Session{}, false
		}
		next = *first
	}
	r.selected[user] = next
	listeners := r.snapshotListeners()
	r.mu.Unlock()

	if next.ID != restored {
		r.persist(ctx, user, &next)
	}
	notify(listeners, user, &next)
	return next, true
}

// Subscribe registers fn for selection changes and returns the matching unsubscribe.
func (r *Registry) Subscribe(fn Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Caller holds mu.
func (r *Registry) find(id string) (models.Session, bool) {
	if id == "" {
		return models.Session{}, false
	}
	for _, s := range r.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Session{}, false
}

// Caller holds mu.
func (r *Registry) first() *models.Session {
	if len(r.sessions) == 0 {
		return nil
	}
	s := r.sessions[0]
	return &s
}

func (r *Registry) restoredID(ctx context.Context, user string) string {
	if r.store == nil {
		return ""
	}
	id, err := r.store.Get(ctx, user)
	if err != nil {
		r.logger.Warn("failed to read stored session selection", zap.String("user_id", user), zap.Error(err))
		return ""
	}
	return id
}

func (r *Registry) persist(ctx context.Context, user string, s *models.Session) {
	if r.store == nil || s == nil {
		return
	}
	if err := r.store.Set(ctx, user, s.ID); err != nil {
		r.logger.Warn("failed to store session selection", zap.String("user_id", user), zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (r *Registry) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, user string, s *models.Session) {
	for _, fn := range listeners {
		if s == nil {
			fn(user, nil)
			continue
		}
		cp := *s
		fn(user, &cp)
	}
}
