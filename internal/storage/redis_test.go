package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
)

func setupTestRedis(t *testing.T, namespace string) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, namespace), mr
}

func TestRedis_SetAndGet(t *testing.T) {
	store, mr := setupTestRedis(t, "default")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart", `[{"id":7,"quantity":2}]`))

	raw, err := mr.Get("storefront:default:cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":7,"quantity":2}]`, raw)
	assert.Zero(t, mr.TTL("storefront:default:cart"))

	got, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestRedis_GetMissing(t *testing.T) {
	store, _ := setupTestRedis(t, "default")

	_, err := store.Get(context.Background(), "cart")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedis_Delete(t *testing.T) {
	store, mr := setupTestRedis(t, "")
	ctx := context.Background()

	mr.Set("storefront:access_token", "tok")
	require.NoError(t, store.Delete(ctx, "access_token"))
	assert.False(t, mr.Exists("storefront:access_token"))

	require.NoError(t, store.Delete(ctx, "access_token"))
}

func TestRedis_ConnectionError(t *testing.T) {
	store, mr := setupTestRedis(t, "default")
	mr.Close()

	_, err := store.Get(context.Background(), "cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "redis get failed")
}
