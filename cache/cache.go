package cache

import (
	"context"
	"errors"

	"github.com/Kariqs/amexan-storefront/models"
)

// CartCache stores rendered carts by owner key.
type CartCache interface {
	Get(ctx context.Context, owner string) (*models.Cart, error)
	Set(ctx context.Context, owner string, cart *models.Cart) error
	Delete(ctx context.Context, owners ...string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache is used when no Redis server is configured. Every read misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.Cart, error) { return nil, ErrCacheMiss }

func (NoopCache) Set(context.Context, string, *models.Cart) error { return nil }

func (NoopCache) Delete(context.Context, ...string) error { return nil }
