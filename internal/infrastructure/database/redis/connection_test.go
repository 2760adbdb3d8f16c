package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/saree-store/internal/config"
	"github.com/your-org/saree-store/internal/testutil"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := &config.Config{Redis: config.RedisConfig{Host: mr.Host(), Port: mr.Port(), PoolSize: 2}}

	client, err := NewConnection(cfg, testutil.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)

	require.NoError(t, client.Health(ctx))

	type entry struct {
		Name string `json:"name"`
	}
	require.NoError(t, client.SetJSON(ctx, "catalog:categories", []entry{{Name: "Silk"}}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("catalog:categories"))

	var got []entry
	found, err := client.GetJSON(ctx, "catalog:categories", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Silk", got[0].Name)

	require.NoError(t, client.Del(ctx, "catalog:categories"))
	found, err = client.GetJSON(ctx, "catalog:categories", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewConnectionFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := NewConnection(&config.Config{Redis: config.RedisConfig{Host: host, Port: port}}, testutil.NewLogger())
	assert.Error(t, err)
}
