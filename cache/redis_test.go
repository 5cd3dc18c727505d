package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_SetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	cart := &models.Cart{
		ID:            7,
		SessionCartID: "session-1",
		Items: []models.CartItem{
			{ProductID: 1, Qty: 2, Price: decimal.RequireFromString("50.00")},
		},
		ItemsPrice: decimal.RequireFromString("100.00"),
		TotalPrice: decimal.RequireFromString("125.00"),
	}
	require.NoError(t, c.Set(ctx, "session:session-1", cart))
	assert.True(t, mr.Exists("cart:session:session-1"))

	got, err := c.Get(ctx, "session:session-1")
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.ID)
	require.Len(t, got.Items, 1)
	assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("125")))
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, err := c.Get(context.Background(), "user:404")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestRedisCache_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(cacheKey("user:1"), "{not json"))

	_, err := c.Get(context.Background(), "user:1")
	require.ErrorContains(t, err, "unmarshal cart failed")
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, c.Set(context.Background(), "user:1", &models.Cart{}))

	ttl := mr.TTL(cacheKey("user:1"))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.LessOrEqual(t, ttl, 20*time.Minute)
}

func TestRedisCache_DeleteMany(t *testing.T) {
	c, mr := setupTestRedis(t)
	data, _ := json.Marshal(&models.Cart{})
	require.NoError(t, mr.Set(cacheKey("user:1"), string(data)))
	require.NoError(t, mr.Set(cacheKey("session:abc"), string(data)))

	require.NoError(t, c.Delete(context.Background(), "user:1", "session:abc", "session:missing"))
	assert.False(t, mr.Exists(cacheKey("user:1")))
	assert.False(t, mr.Exists(cacheKey("session:abc")))
}
