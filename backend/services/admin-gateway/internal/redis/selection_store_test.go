package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionKeys(t *testing.T) {
	assert.Equal(t, "admin:selected_session:42", NewSelectionStore(nil, " ").key("42"))
	assert.Equal(t, "custom:a-1", NewSelectionStore(nil, "custom:").key("a-1"))
}

// Runs against a live redis when REDIS_ADDR is set.
func TestSelectionStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	prefix := "test:selected_session:" + t.Name()
	store := NewSelectionStore(client, prefix)
	t.Cleanup(func() { client.Del(ctx, store.key("alice"), store.key("bob")) })

	id, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.Set(ctx, "alice", "42"))
	require.NoError(t, store.Set(ctx, "bob", "7"))

	id, err = store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	id, err = store.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "7", id)
}
