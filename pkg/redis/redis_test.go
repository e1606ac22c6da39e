package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imedbrahmi/hospital_backend/config"
)

func TestFromCentralConfigDefaults(t *testing.T) {
	cfg := FromCentralConfig(config.RedisConfig{ReadTimeoutSeconds: 9})
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 9*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestNewRedisPings(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisFromCentral(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), Config{Addr: addr, DialTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestFiberStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisFromCentral(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)

	store := NewFiberStorage(rdb)
	require.NoError(t, store.Set("hits", []byte("3"), time.Minute))
	got, err := store.Get("hits")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)
}
