package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/Kariqs/amexan-storefront/events"
	"github.com/Kariqs/amexan-storefront/initializers"
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/payments"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, initializers.SyncDatabase(db))
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, label ...string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s want %s, got %s", strings.Join(label, " "), want, got.String())
}

func createProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Slug:        name,
		Category:    "Shoes",
		Brand:       "Amexan",
		Description: name + " description",
		Price:       dec(price),
		Stock:       stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createUser(t *testing.T, db *gorm.DB, email string, withAddress bool, paymentMethod string) *models.User {
	t.Helper()
	u := &models.User{Name: "Jane Doe", Email: email, Role: models.RoleUser, PaymentMethod: paymentMethod}
	if withAddress {
		u.Address = datatypes.NewJSONType(models.ShippingAddress{
			FullName:      "Jane Doe",
			StreetAddress: "1 Main St",
			City:          "Nairobi",
			PostalCode:    "00100",
			Country:       "Kenya",
		})
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

type fakeGateway struct {
	mu          sync.Mutex
	remoteID    string
	createErr   error
	capture     *payments.CaptureResult
	captureErr  error
	amounts     []int64
	captureCall int
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountMinorUnits int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amounts = append(f.amounts, amountMinorUnits)
	return f.remoteID, f.createErr
}

func (f *fakeGateway) CapturePayment(_ context.Context, remoteOrderID string) (*payments.CaptureResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captureCall++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.capture, nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	receipts   []uint
	newOrders  []uint
	recipients []string
	err        error
}

func (f *fakeNotifier) SendPurchaseReceipt(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receipts = append(f.receipts, order.ID)
	return f.err
}

func (f *fakeNotifier) SendNewOrderNotification(_ context.Context, order *models.Order, recipients []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newOrders = append(f.newOrders, order.ID)
	f.recipients = recipients
	return f.err
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event events.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type orderFixture struct {
	db        *gorm.DB
	carts     *CartService
	orders    *OrderService
	gateway   *fakeGateway
	notifier  *fakeNotifier
	publisher *fakePublisher
}

func newOrderFixture(t *testing.T, policy StockPolicy) *orderFixture {
	t.Helper()
	db := setupTestDB(t)
	f := &orderFixture{
		db:        db,
		carts:     NewCartService(db, nil, DefaultPricingRule(), testLogger()),
		gateway:   &fakeGateway{remoteID: "PAYPAL-1"},
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
	}
	f.orders = NewOrderService(db, f.carts, f.gateway, f.notifier, f.publisher, OrderConfig{
		NotifyRecipients: []string{"ops@amexan.store"},
		StockPolicy:      policy,
	}, testLogger())
	t.Cleanup(f.orders.Wait)
	return f
}

// placeOrder fills the user's cart and checks it out.
func (f *orderFixture) placeOrder(t *testing.T, user *models.User, product *models.Product, qty int) *models.Order {
	t.Helper()
	owner := Owner{UserID: user.ID}
	_, err := f.carts.AddItem(context.Background(), owner, product.ID, qty)
	require.NoError(t, err)
	order, err := f.orders.CreateOrder(context.Background(), owner)
	require.NoError(t, err)
	return order
}

var errBoom = errors.New("boom")
