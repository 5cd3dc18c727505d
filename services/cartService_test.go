package services

import (
	"context"
	"testing"

	"github.com/Kariqs/amexan-storefront/cache"
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionID = "3f2b8e5a-6c1d-4e8f-9a0b-7d6c5e4f3a2b"

func TestCartService_GetCartWithoutCart(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db, nil, DefaultPricingRule(), testLogger())

	cart, err := svc.GetCart(context.Background(), Owner{SessionCartID: sessionID})
	require.NoError(t, err)
	assert.Zero(t, cart.ID)
	assert.Empty(t, cart.Items)
	assertDecimal(t, "0", cart.TotalPrice)

	var count int64
	db.Model(&models.Cart{}).Count(&count)
	assert.Zero(t, count)
}

func TestCartService_MissingOwner(t *testing.T) {
	svc := NewCartService(setupTestDB(t), nil, DefaultPricingRule(), testLogger())

	_, err := svc.GetCart(context.Background(), Owner{})
	assert.ErrorIs(t, err, ErrMissingOwner)
	_, err = svc.AddItem(context.Background(), Owner{}, 1, 1)
	assert.ErrorIs(t, err, ErrMissingOwner)
}

func TestCartService_AddUpdateRemove(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db, nil, DefaultPricingRule(), testLogger())
	shoe := createProduct(t, db, "runner", "50", 10)
	sock := createProduct(t, db, "sock", "4.99", 10)
	owner := Owner{SessionCartID: sessionID}
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, owner, shoe.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assertDecimal(t, "67.5", cart.TotalPrice)

	cart, err = svc.AddItem(ctx, owner, shoe.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty)
	assertDecimal(t, "125", cart.TotalPrice)

	cart, err = svc.AddItem(ctx, owner, sock.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assertDecimal(t, "104.99", cart.ItemsPrice)
	assertDecimal(t, "0", cart.ShippingPrice)

	cart, err = svc.UpdateQuantity(ctx, owner, shoe.ID, 3)
	require.NoError(t, err)
	assertDecimal(t, "154.99", cart.ItemsPrice)

	cart, err = svc.UpdateQuantity(ctx, owner, sock.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assertDecimal(t, "150", cart.ItemsPrice)

	cart, err = svc.RemoveItem(ctx, owner, shoe.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assertDecimal(t, "0", cart.TotalPrice)
	assertDecimal(t, "0", cart.ShippingPrice)

	_, err = svc.RemoveItem(ctx, owner, shoe.ID)
	assert.ErrorIs(t, err, ErrCartItemMissing)
}

func TestCartService_StoredTotalsMatchItems(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db, nil, DefaultPricingRule(), testLogger())
	shoe := createProduct(t, db, "runner", "33.33", 10)
	owner := Owner{SessionCartID: sessionID}

	_, err := svc.AddItem(context.Background(), owner, shoe.ID, 2)
	require.NoError(t, err)

	var stored models.Cart
	require.NoError(t, db.Preload("Items").Where("session_cart_id = ?", sessionID).First(&stored).Error)
	want := DefaultPricingRule().Calculate(stored.Items)
	assert.True(t, want.TotalPrice.Equal(stored.TotalPrice))
	assert.True(t, want.TaxPrice.Equal(stored.TaxPrice))
}

func TestCartService_AddItemErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db, nil, DefaultPricingRule(), testLogger())
	shoe := createProduct(t, db, "runner", "50", 2)
	owner := Owner{SessionCartID: sessionID}

	_, err := svc.AddItem(context.Background(), owner, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.AddItem(context.Background(), owner, shoe.ID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var verr *ValidationError
	_, err = svc.AddItem(context.Background(), owner, shoe.ID, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "qty", verr.Field)

	verr = nil
	_, err = svc.UpdateQuantity(context.Background(), owner, shoe.ID, -1)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "qty", verr.Field)
}

func TestCartService_MergeOnLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db, nil, DefaultPricingRule(), testLogger())
	user := createUser(t, db, "jane@example.com", true, "PayPal")
	shoe := createProduct(t, db, "runner", "50", 10)
	sock := createProduct(t, db, "sock", "5", 10)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, Owner{UserID: user.ID}, sock.ID, 4)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, Owner{SessionCartID: sessionID}, shoe.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(ctx, sessionID, user.ID))

	cart, err := svc.GetCart(ctx, Owner{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, shoe.ID, cart.Items[0].ProductID)
	assert.NotEqual(t, sessionID, cart.SessionCartID)

	anon, err := svc.GetCart(ctx, Owner{SessionCartID: sessionID})
	require.NoError(t, err)
	assert.Empty(t, anon.Items)

	var carts int64
	db.Model(&models.Cart{}).Count(&carts)
	assert.EqualValues(t, 1, carts)
}

func TestCartService_MergeOnLoginWithoutSessionCart(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCartService(db, nil, DefaultPricingRule(), testLogger())
	user := createUser(t, db, "jane@example.com", true, "PayPal")
	sock := createProduct(t, db, "sock", "5", 10)

	_, err := svc.AddItem(context.Background(), Owner{UserID: user.ID}, sock.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.MergeOnLogin(context.Background(), sessionID, user.ID))

	cart, err := svc.GetCart(context.Background(), Owner{UserID: user.ID})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_RedisCacheIsInvalidated(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewCartService(db, cache.NewRedisCache(client), DefaultPricingRule(), testLogger())
	shoe := createProduct(t, db, "runner", "50", 10)
	owner := Owner{SessionCartID: sessionID}
	ctx := context.Background()

	_, err := svc.AddItem(ctx, owner, shoe.ID, 1)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.True(t, mr.Exists("cart:session:"+sessionID))

	_, err = svc.AddItem(ctx, owner, shoe.ID, 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:session:"+sessionID))

	cart, err = svc.GetCart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Qty)
}
