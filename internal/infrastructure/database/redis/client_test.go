package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/internal/testutil"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

func TestNewClient_Standalone(t *testing.T) {
	mr := miniredis.RunT(t)
	log := testutil.NewMockLogger()

	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, log)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.True(t, log.HasMessage("info", "redis client connected"))
}

func TestNewClient_UnknownModeFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	log := testutil.NewMockLogger()

	client, err := NewClient(&RedisConfig{Mode: "ring", Addr: mr.Addr()}, log)
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, log.HasMessage("warn", "invalid redis mode, defaulting to standalone"))
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	_, err := NewClient(&RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &RedisConfig{}
	applyDefaults(cfg)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestBuildTLSConfig(t *testing.T) {
	tc, err := buildTLSConfig(&RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, tc)

	tc, err = buildTLSConfig(&RedisConfig{TLSEnabled: true, TLSInsecure: true})
	require.NoError(t, err)
	assert.True(t, tc.InsecureSkipVerify)

	_, err = buildTLSConfig(&RedisConfig{TLSEnabled: true, TLSCAFile: "/nonexistent/ca.pem"})
	assert.Error(t, err)
}

func TestClient_Operations(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "a", "1", 0).Err())
	v, err := client.Get(ctx, "a").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	ok, err := client.SetNX(ctx, "a", "2", 0).Result()
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := client.Exists(ctx, "a").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = client.Del(ctx, "a").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_Close(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	ctx := context.Background()
	assert.Equal(t, ErrClientClosed, client.Ping(ctx))
	assert.Equal(t, ErrClientClosed, client.Get(ctx, "a").Err())
	assert.Equal(t, ErrClientClosed, client.Set(ctx, "a", "1", 0).Err())
	assert.Equal(t, ErrClientClosed, client.Del(ctx, "a").Err())
}

//Personal.AI order the ending
