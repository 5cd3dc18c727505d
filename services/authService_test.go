package services

import (
	"context"
	"testing"
	"time"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func newAuthService(t *testing.T) (*AuthService, *CartService) {
	t.Helper()
	db := setupTestDB(t)
	carts := NewCartService(db, nil, DefaultPricingRule(), testLogger())
	return NewAuthService(db, carts, testSecret, time.Hour, testLogger()), carts
}

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, models.SignupData{Name: "Jane Doe", Email: "Jane@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	identity, err := auth.Authenticate(ctx, "jane@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, models.RoleUser, identity.Role)

	_, err = auth.Register(ctx, models.SignupData{Name: "Jane Again", Email: "jane@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_AuthenticateFailures(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	_, err := auth.Register(ctx, models.SignupData{Name: "Jane Doe", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, auth.db.Create(&models.User{Name: "No Password", Email: "nopass@example.com"}).Error)

	for _, tc := range []struct{ email, password string }{
		{"jane@example.com", "wrong"},
		{"nobody@example.com", "secret1"},
		{"nopass@example.com", ""},
	} {
		_, err := auth.Authenticate(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials, tc.email)
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	auth, _ := newAuthService(t)

	token, err := auth.IssueToken(&Identity{UserID: 7, Name: "Jane", Email: "jane@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	identity, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), identity.UserID)
	assert.True(t, identity.IsAdmin())
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	auth, _ := newAuthService(t)

	expired := &AuthService{secret: auth.secret, ttl: time.Hour, now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
	expiredToken, err := expired.IssueToken(&Identity{UserID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	other := &AuthService{secret: []byte("another-secret-0123456789"), ttl: time.Hour, now: time.Now}
	foreignToken, err := other.IssueToken(&Identity{UserID: 1, Role: models.RoleUser})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Role: models.RoleAdmin})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expiredToken,
		"wrong secret": foreignToken,
		"alg none":     noneToken,
		"garbage":      "not-a-token",
	} {
		_, err := auth.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestAuthService_LoginMergesSessionCart(t *testing.T) {
	auth, carts := newAuthService(t)
	ctx := context.Background()
	product := createProduct(t, auth.db, "runner", "50", 10)
	_, err := auth.Register(ctx, models.SignupData{Name: "Jane Doe", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, Owner{SessionCartID: sessionID}, product.ID, 2)
	require.NoError(t, err)

	token, identity, err := auth.Login(ctx, models.LoginData{Email: "jane@example.com", Password: "secret1"}, sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	cart, err := carts.GetCart(ctx, Owner{UserID: identity.UserID})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty)
}

func TestAuthService_ProfileUpdates(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	user := createUser(t, auth.db, "jane@example.com", false, "")

	_, err := auth.UpdateAddress(ctx, user.ID, models.ShippingAddress{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	updated, err := auth.UpdateAddress(ctx, user.ID, models.ShippingAddress{
		FullName: "Jane Doe", StreetAddress: "1 Main St", City: "Mombasa", PostalCode: "80100", Country: "Kenya",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mombasa", updated.Address.Data().City)

	_, err = auth.UpdatePaymentMethod(ctx, user.ID, "Bitcoin")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "/payment-method", verr.RedirectTo)

	updated, err = auth.UpdatePaymentMethod(ctx, user.ID, "CashOnDelivery")
	require.NoError(t, err)
	assert.Equal(t, "CashOnDelivery", updated.PaymentMethod)

	_, err = auth.UpdatePaymentMethod(ctx, 999, "PayPal")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
