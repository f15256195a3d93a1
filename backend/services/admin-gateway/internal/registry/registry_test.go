package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schooladmin/backend/services/admin-gateway/internal/models"
)

const admin = "admin-1"

type fakeLister struct {
	records []map[string]any
	err     error
	calls   int
}

func (f *fakeLister) ListSessions(context.Context) ([]map[string]any, error) {
	f.calls++
	return f.records, f.err
}

type memoryStore struct {
	mu  sync.Mutex
	ids map[string]string
	err error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{ids: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[user], m.err
}

func (m *memoryStore) Set(_ context.Context, user, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[user] = id
	return m.err
}

func (m *memoryStore) id(user string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[user]
}

func records(pairs ...string) []map[string]any {
	out := make([]map[string]any, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, map[string]any{"id": pairs[i], "name": pairs[i+1]})
	}
	return out
}

func selectedID(t *testing.T, r *Registry, user string) string {
	t.Helper()
	s, ok := r.Selected(context.Background(), user)
	if !ok {
		return ""
	}
	return s.ID
}

func TestLoadSelectsFirstByDefault(t *testing.T) {
	lister := &fakeLister{records: records("1", "2025-26", "2", "2026-27")}
	r := New(lister, nil, nil)

	r.Load(context.Background())

	assert.Equal(t, []models.Session{{ID: "1", Name: "2025-26"}, {ID: "2", Name: "2026-27"}}, r.Sessions())
	selected, ok := r.Selected(context.Background(), admin)
	require.True(t, ok)
	assert.Equal(t, r.Sessions()[0], selected)
}

func TestLoadFailureDegradesToEmptyList(t *testing.T) {
	lister := &fakeLister{records: records("1", "2025-26")}
	r := New(lister, nil, nil)
	r.Load(context.Background())
	assert.Equal(t, "1", selectedID(t, r, admin))

	lister.err = errors.New("backend down")
	r.Reload(context.Background())

	assert.Empty(t, r.Sessions())
	assert.Equal(t, "1", selectedID(t, r, admin))
	assert.Equal(t, 2, lister.calls)
}

func TestLoadFailureWithoutSelection(t *testing.T) {
	r := New(&fakeLister{err: errors.New("timeout")}, nil, nil)
	r.Load(context.Background())

	assert.Empty(t, r.Sessions())
	_, ok := r.Selected(context.Background(), admin)
	assert.False(t, ok)
}

func TestReloadKeepsSelectionWhenStillPresent(t *testing.T) {
	lister := &fakeLister{records: records("1", "A", "2", "B")}
	r := New(lister, nil, nil)
	r.Load(context.Background())
	_, err := r.Select(context.Background(), admin, "2")
	require.NoError(t, err)

	lister.records = records("3", "C", "2", "B renamed")
	r.Reload(context.Background())

	selected, _ := r.Selected(context.Background(), admin)
	assert.Equal(t, models.Session{ID: "2", Name: "B renamed"}, selected)
}

func TestReloadReplacesStaleSelection(t *testing.T) {
	lister := &fakeLister{records: records("1", "A", "2", "B")}
	r := New(lister, nil, nil)
	r.Load(context.Background())
	_, err := r.Select(context.Background(), admin, "2")
	require.NoError(t, err)

	lister.records = records("5", "E")
	r.Reload(context.Background())
	assert.Equal(t, "5", selectedID(t, r, admin))

	lister.records = nil
	r.Reload(context.Background())
	_, ok := r.Selected(context.Background(), admin)
	assert.False(t, ok)
}

func TestSelectRejectsUnknownID(t *testing.T) {
	r := New(&fakeLister{records: records("1", "A")}, nil, nil)
	r.Load(context.Background())

	_, err := r.Select(context.Background(), admin, "99")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, "1", selectedID(t, r, admin))
}

func TestSelectionsAreKeptPerUser(t *testing.T) {
	store := newMemoryStore()
	r := New(&fakeLister{records: records("1", "A", "2", "B")}, store, nil)
	r.Load(context.Background())

	_, err := r.Select(context.Background(), "alice", "2")
	require.NoError(t, err)

	assert.Equal(t, "2", selectedID(t, r, "alice"))
	assert.Equal(t, "1", selectedID(t, r, "bob"))

	_, err = r.Select(context.Background(), "bob", "1")
	require.NoError(t, err)
	assert.Equal(t, "2", selectedID(t, r, "alice"))
	assert.Equal(t, "2", store.id("alice"))
	assert.Equal(t, "1", store.id("bob"))
}

func TestSelectionIsPersistedAndRestored(t *testing.T) {
	store := newMemoryStore()
	lister := &fakeLister{records: records("1", "A", "2", "B")}

	first := New(lister, store, nil)
	first.Load(context.Background())
	assert.Equal(t, "1", selectedID(t, first, admin))
	assert.Equal(t, "1", store.id(admin))

	_, err := first.Select(context.Background(), admin, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", store.id(admin))

	second := New(lister, store, nil)
	second.Load(context.Background())
	assert.Equal(t, "2", selectedID(t, second, admin))
}

func TestRestoredIDIgnoredWhenUnknown(t *testing.T) {
	store := newMemoryStore()
	store.ids[admin] = "gone"
	r := New(&fakeLister{records: records("1", "A")}, store, nil)
	r.Load(context.Background())

	assert.Equal(t, "1", selectedID(t, r, admin))
	assert.Equal(t, "1", store.id(admin))
}

func TestStoreErrorsAreNotFatal(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis down")
	r := New(&fakeLister{records: records("1", "A", "2", "B")}, store, nil)
	r.Load(context.Background())

	assert.Equal(t, "1", selectedID(t, r, admin))
	s, err := r.Select(context.Background(), admin, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", s.ID)
}

func TestSubscribersSeeChanges(t *testing.T) {
	r := New(&fakeLister{records: records("1", "A", "2", "B")}, nil, nil)

	var seen []string
	unsubscribe := r.Subscribe(func(user string, s *models.Session) {
		if s == nil {
			seen = append(seen, user+":")
			return
		}
		seen = append(seen, user+":"+s.ID)
	})

	r.Load(context.Background())
	_, _ = r.Select(context.Background(), admin, "2")
	_, _ = r.Select(context.Background(), admin, "2")
	_, _ = r.Select(context.Background(), "other", "1")
	unsubscribe()
	unsubscribe()
	_, _ = r.Select(context.Background(), admin, "1")

	assert.Equal(t, []string{admin + ":2", "other:1"}, seen)
}

func TestConcurrentSelectsNotifyInApplyOrder(t *testing.T) {
	store := newMemoryStore()
	r := New(&fakeLister{records: records("1", "A", "2", "B", "3", "C")}, store, nil)
	r.Load(context.Background())

	var (
		mu   sync.Mutex
		last string
	)
	r.Subscribe(func(_ string, s *models.Session) {
		mu.Lock()
		defer mu.Unlock()
		last = s.ID
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Select(context.Background(), admin, fmt.Sprint(i%3+1))
		}(i)
	}
	wg.Wait()

	current := selectedID(t, r, admin)
	assert.Equal(t, current, store.id(admin))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, current, last)
}

func TestSessionsReturnsCopy(t *testing.T) {
	r := New(&fakeLister{records: records("1", "A")}, nil, nil)
	r.Load(context.Background())

	list := r.Sessions()
	list[0].Name = "mutated"
	assert.Equal(t, "A", r.Sessions()[0].Name)
}
