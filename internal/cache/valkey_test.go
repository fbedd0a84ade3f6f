package cache

import (
	"os"
	"testing"
	"time"

	"holidaze/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a running Valkey: VALKEY_ADDR=localhost:6379 go test ./internal/cache/
func newTestClient(t *testing.T) *ValkeyClient {
	t.Helper()
	addr := os.Getenv("VALKEY_ADDR")
	if addr == "" {
		t.Skip("VALKEY_ADDR not set")
	}

	client, err := NewValkeyClient(Config{Addr: addr, KeyPrefix: "holidaze:test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCredentialsLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := t.Context()
	id := uuid.NewString()

	_, ok, err := client.GetCredentials(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	creds := models.Credentials{AccessToken: "tok", ProfileName: "mona"}
	require.NoError(t, client.SaveCredentials(ctx, id, creds, time.Minute))

	got, ok, err := client.GetCredentials(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, creds, got)

	ttl, err := client.client.TTL(ctx, client.key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, client.ClearCredentials(ctx, id))
	_, ok, err = client.GetCredentials(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyPrefix(t *testing.T) {
	client := &ValkeyClient{keyPrefix: "holidaze:session:"}

	assert.Equal(t, "holidaze:session:abc", client.key("abc"))
}
