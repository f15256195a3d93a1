package redisstore

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultSelectionKey prefixes the per-administrator selected session keys.
const DefaultSelectionKey = "admin:selected_session"

// SelectionStore keeps each administrator's selected session id in redis under
// <prefix>:<user>.
type SelectionStore struct {
	client redis.Cmdable
	prefix string
}

// NewSelectionStore returns a redis-backed selection store. An empty prefix uses DefaultSelectionKey.
func NewSelectionStore(client redis.Cmdable, prefix string) *SelectionStore {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultSelectionKey
	}
	return &SelectionStore{client: client, prefix: prefix}
}

// Get returns the id stored for user, or "" when nothing was stored yet.
func (s *SelectionStore) Get(ctx context.Context, user string) (string, error) {
	id, err := s.client.Get(ctx, s.key(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Set stores the id for user without expiry.
func (s *SelectionStore) Set(ctx context.Context, user, id string) error {
	return s.client.Set(ctx, s.key(user), id, 0).Err()
}

func (s *SelectionStore) key(user string) string {
	return s.prefix + ":" + user
}
