package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Kariqs/amexan-storefront/events"
	"github.com/Kariqs/amexan-storefront/metrics"
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/Kariqs/amexan-storefront/payments"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockPolicy decides what happens when a paid order takes more units than
// are in stock.
type StockPolicy string

const (
	StockAllowNegative StockPolicy = "allow"
	StockReject        StockPolicy = "reject"
)

// PaymentStatusCashOnDelivery marks a payment result recorded without a
// gateway capture.
const PaymentStatusCashOnDelivery = "CASH_ON_DELIVERY"

// Notifier sends the transactional order emails.
type Notifier interface {
	SendPurchaseReceipt(ctx context.Context, order *models.Order) error
	SendNewOrderNotification(ctx context.Context, order *models.Order, recipients []string) error
}

type OrderConfig struct {
	NotifyRecipients    []string
	StockPolicy         StockPolicy
	NotificationTimeout time.Duration
	EventTimeout        time.Duration
}

type OrderService struct {
	db       *gorm.DB
	carts    *CartService
	payments payments.Gateway
	notifier Notifier
	events   events.Publisher
	cfg      OrderConfig
	logger   *slog.Logger

	wg  sync.WaitGroup
	now func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	carts *CartService,
	gateway payments.Gateway,
	notifier Notifier,
	publisher events.Publisher,
	cfg OrderConfig,
	logger *slog.Logger,
) *OrderService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	if cfg.StockPolicy == "" {
		cfg.StockPolicy = StockAllowNegative
	}
	if cfg.NotificationTimeout <= 0 {
		cfg.NotificationTimeout = 15 * time.Second
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = 5 * time.Second
	}
	return &OrderService{
		db:       db,
		carts:    carts,
		payments: gateway,
		notifier: notifier,
		events:   publisher,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateOrder turns the owner's cart into an order. Precondition failures
// come back as *ValidationError with the page where they can be fixed.
func (s *OrderService) CreateOrder(ctx context.Context, owner Owner) (*models.Order, error) {
	if !owner.IsAuthenticated() {
		return nil, &ValidationError{Field: "user", Message: "User is not authenticated", RedirectTo: "/sign-in"}
	}

	user, err := findUser(ctx, s.db, owner.UserID)
	if err != nil {
		return nil, err
	}

	cart, err := findCart(ctx, s.db, owner)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, errEmptyCart()
	}
	address := user.Address.Data()
	if address.IsZero() {
		return nil, &ValidationError{Field: "shippingAddress", Message: "Please add a shipping address", RedirectTo: "/shipping-address"}
	}
	if strings.TrimSpace(user.PaymentMethod) == "" {
		return nil, &ValidationError{Field: "paymentMethod", Message: "Please select a payment method", RedirectTo: "/payment-method"}
	}

	var order models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, cart.ID).Error; err != nil {
			return persistenceError("lock cart", err)
		}
		if err := tx.Where("cart_id = ?", cart.ID).Order("id").Find(&locked.Items).Error; err != nil {
			return persistenceError("load cart items", err)
		}
		if len(locked.Items) == 0 {
			return errEmptyCart()
		}

		totals := s.carts.pricing.Calculate(locked.Items)
		order = models.Order{
			UserID:          user.ID,
			ShippingAddress: datatypes.NewJSONType(address),
			PaymentMethod:   user.PaymentMethod,
			ItemsPrice:      totals.ItemsPrice,
			ShippingPrice:   totals.ShippingPrice,
			TaxPrice:        totals.TaxPrice,
			TotalPrice:      totals.TotalPrice,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return persistenceError("create order", err)
		}

		items := make([]models.OrderItem, 0, len(locked.Items))
		for _, line := range locked.Items {
			items = append(items, models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				Slug:      line.Slug,
				Image:     line.Image,
				Qty:       line.Qty,
				Price:     line.Price,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return persistenceError("create order items", err)
		}
		order.OrderItems = items

		return clearCart(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.carts.invalidate(owner)
	metrics.OrdersCreated.Inc()
	s.logger.Info("order created", "order_id", order.ID, "user_id", user.ID, "total", order.TotalPrice.StringFixed(2))

	created, err := s.GetOrderByID(ctx, order.ID)
	if err != nil {
		s.logger.Warn("reload created order", "order_id", order.ID, "error", err)
		order.User = *user
		created = &order
	}
	s.dispatch("new_order", created.ID, func(ctx context.Context) error {
		return s.notifier.SendNewOrderNotification(ctx, created, s.cfg.NotifyRecipients)
	})
	s.publish(ctx, events.OrderCreated, created)
	return created, nil
}

// MarkPaid records a payment and takes the ordered units out of stock. An
// order can be paid only once.
func (s *OrderService) MarkPaid(ctx context.Context, orderID uint, result *models.PaymentResult) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return ErrAlreadyPaid
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return persistenceError("load order items", err)
		}
		for _, item := range items {
			if err := s.decrementStock(tx, item); err != nil {
				return err
			}
		}

		updates := map[string]any{
			"is_paid": true,
			"paid_at": s.now(),
		}
		if result == nil {
			result = &models.PaymentResult{Status: PaymentStatusCashOnDelivery, PricePaid: order.TotalPrice.StringFixed(2)}
		}
		updates["payment_result"] = datatypes.NewJSONType(*result)
		res := tx.Model(&models.Order{}).Where("id = ? AND is_paid = ?", orderID, false).Updates(updates)
		if res.Error != nil {
			return persistenceError("mark order paid", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyPaid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paid, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	metrics.OrdersPaid.WithLabelValues(paid.PaymentMethod).Inc()
	s.logger.Info("order paid", "order_id", orderID, "method", paid.PaymentMethod)

	s.dispatch("purchase_receipt", paid.ID, func(ctx context.Context) error {
		return s.notifier.SendPurchaseReceipt(ctx, paid)
	})
	s.publish(ctx, events.OrderPaid, paid)
	return paid, nil
}

func (s *OrderService) decrementStock(tx *gorm.DB, item models.OrderItem) error {
	query := tx.Model(&models.Product{}).Where("id = ?", item.ProductID)
	if s.cfg.StockPolicy == StockReject {
		query = query.Where("stock >= ?", item.Qty)
	}
	res := query.UpdateColumn("stock", gorm.Expr("stock - ?", item.Qty))
	if res.Error != nil {
		return persistenceError("decrement stock", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	if _, err := findProduct(tx.Statement.Context, tx, item.ProductID); err != nil {
		return err
	}
	return fmt.Errorf("%w for product %d", ErrInsufficientStock, item.ProductID)
}

// MarkDelivered requires the order to be paid first and succeeds once.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uint) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if !order.IsPaid {
			return ErrNotPaid
		}
		if order.IsDelivered {
			return ErrAlreadyDelivered
		}

		res := tx.Model(&models.Order{}).Where("id = ? AND is_delivered = ?", orderID, false).
			Updates(map[string]any{"is_delivered": true, "delivered_at": s.now()})
		if res.Error != nil {
			return persistenceError("mark order delivered", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDelivered
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	delivered, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	metrics.OrdersDelivered.Inc()
	s.publish(ctx, events.OrderDelivered, delivered)
	return delivered, nil
}

// DeleteOrder removes an order and its items whatever its state.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	var deleted models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		deleted = *order

		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return persistenceError("delete order items", err)
		}
		if err := tx.Delete(&models.Order{}, orderID).Error; err != nil {
			return persistenceError("delete order", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if deleted.IsPaid || deleted.IsDelivered {
		s.logger.Warn("deleted an order that was already paid or delivered",
			"order_id", orderID, "is_paid", deleted.IsPaid, "is_delivered", deleted.IsDelivered)
	}
	s.publish(ctx, events.OrderDeleted, &deleted)
	return nil
}

// CreatePayPalOrder opens the remote PayPal order for the order total and
// remembers its id for the approval check.
func (s *OrderService) CreatePayPalOrder(ctx context.Context, orderID uint) (string, error) {
	order, err := findOrder(ctx, s.db, orderID)
	if err != nil {
		return "", err
	}
	if order.IsPaid {
		return "", ErrAlreadyPaid
	}

	amount := order.TotalPrice.Shift(2).Round(0).IntPart()
	remoteID, err := s.payments.CreateOrder(ctx, amount)
	if err != nil {
		return "", fmt.Errorf("create paypal order: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", orderID, false).
		Update("payment_result", datatypes.NewJSONType(models.PaymentResult{ID: remoteID, PricePaid: "0"}))
	if res.Error != nil {
		return "", persistenceError("store paypal order id", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrAlreadyPaid
	}
	return remoteID, nil
}

// ApprovePayPalOrder captures the remote order and marks the order paid only
// when the capture matches the stored remote order and is completed.
func (s *OrderService) ApprovePayPalOrder(ctx context.Context, orderID uint, remoteOrderID string) (*models.Order, error) {
	order, err := findOrder(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, ErrAlreadyPaid
	}

	expected := order.PaymentResult.Data().ID
	if expected == "" || remoteOrderID != expected {
		metrics.PaymentMismatches.Inc()
		return nil, &PaymentMismatchError{OrderID: orderID, ExpectedID: expected, CapturedID: remoteOrderID}
	}

	capture, err := s.payments.CapturePayment(ctx, remoteOrderID)
	if err != nil {
		return nil, fmt.Errorf("capture paypal payment: %w", err)
	}
	if capture.ID != expected || capture.Status != payments.StatusCompleted {
		metrics.PaymentMismatches.Inc()
		s.logger.Warn("paypal capture rejected", "order_id", orderID, "expected", expected,
			"captured", capture.ID, "status", capture.Status)
		return nil, &PaymentMismatchError{
			OrderID:        orderID,
			ExpectedID:     expected,
			CapturedID:     capture.ID,
			CapturedStatus: capture.Status,
		}
	}

	return s.MarkPaid(ctx, orderID, &models.PaymentResult{
		ID:           capture.ID,
		Status:       capture.Status,
		EmailAddress: capture.PayerEmail,
		PricePaid:    capture.Amount,
	})
}

// MarkPaidCashOnDelivery records a payment collected by hand. Any remote
// payment reference left by an abandoned PayPal attempt is replaced.
func (s *OrderService) MarkPaidCashOnDelivery(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.MarkPaid(ctx, orderID, nil)
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems", orderByID).
		Preload("User").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, persistenceError("find order", err)
	}
	return &order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint, page, limit int) (*Page[models.Order], error) {
	page, limit = normalizePage(page, limit)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, persistenceError("count user orders", err)
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc").Limit(limit).Offset((page - 1) * limit).
		Find(&orders).Error; err != nil {
		return nil, persistenceError("list user orders", err)
	}

	return &Page[models.Order]{Data: orders, Total: count, Page: page, TotalPages: totalPages(count, limit)}, nil
}

// ListOrders pages through all orders, optionally filtered by customer name.
func (s *OrderService) ListOrders(ctx context.Context, query string, page, limit int) (*Page[models.Order], error) {
	page, limit = normalizePage(page, limit)

	filter := func(db *gorm.DB) *gorm.DB {
		if q := strings.TrimSpace(query); q != "" && q != "all" {
			db = db.Joins("JOIN users ON users.id = orders.user_id").
				Where("LOWER(users.name) LIKE ?", "%"+strings.ToLower(q)+"%")
		}
		return db
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Scopes(filter).
		Count(&count).Error; err != nil {
		return nil, persistenceError("count orders", err)
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Scopes(filter).
		Preload("User").Order("orders.created_at desc").
		Limit(limit).Offset((page - 1) * limit).
		Find(&orders).Error; err != nil {
		return nil, persistenceError("list orders", err)
	}

	return &Page[models.Order]{Data: orders, Total: count, Page: page, TotalPages: totalPages(count, limit)}, nil
}

type MonthlySales struct {
	Month      string          `json:"month"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

type salesRow struct {
	CreatedAt  time.Time
	TotalPrice decimal.Decimal
}

type OrderSummary struct {
	OrdersCount   int64           `json:"ordersCount"`
	ProductsCount int64           `json:"productsCount"`
	UsersCount    int64           `json:"usersCount"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	SalesData     []MonthlySales  `json:"salesData"`
	LatestOrders  []models.Order  `json:"latestOrders"`
}

// Summary gathers the admin dashboard figures.
func (s *OrderService) Summary(ctx context.Context) (*OrderSummary, error) {
	db := s.db.WithContext(ctx)
	summary := &OrderSummary{}

	if err := db.Model(&models.Order{}).Count(&summary.OrdersCount).Error; err != nil {
		return nil, persistenceError("count orders", err)
	}
	if err := db.Model(&models.Product{}).Count(&summary.ProductsCount).Error; err != nil {
		return nil, persistenceError("count products", err)
	}
	if err := db.Model(&models.User{}).Count(&summary.UsersCount).Error; err != nil {
		return nil, persistenceError("count users", err)
	}

	var rows []salesRow
	if err := db.Model(&models.Order{}).Select("created_at", "total_price").Scan(&rows).Error; err != nil {
		return nil, persistenceError("load sales", err)
	}

	byMonth := map[string]decimal.Decimal{}
	firstSeen := map[string]time.Time{}
	summary.TotalSales = decimal.Zero
	for _, row := range rows {
		summary.TotalSales = summary.TotalSales.Add(row.TotalPrice)
		month := row.CreatedAt.Format("01/06")
		byMonth[month] = byMonth[month].Add(row.TotalPrice)
		start := time.Date(row.CreatedAt.Year(), row.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		firstSeen[month] = start
	}
	for month, total := range byMonth {
		summary.SalesData = append(summary.SalesData, MonthlySales{Month: month, TotalSales: total})
	}
	sort.Slice(summary.SalesData, func(i, j int) bool {
		return firstSeen[summary.SalesData[i].Month].Before(firstSeen[summary.SalesData[j].Month])
	})

	if err := db.Preload("User").Order("created_at desc").Limit(6).
		Find(&summary.LatestOrders).Error; err != nil {
		return nil, persistenceError("list latest orders", err)
	}
	return summary, nil
}

// Wait blocks until every in-flight notification has finished.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

// dispatch runs a best-effort side effect outside the request. A failure is
// logged and counted and never reaches the caller.
func (s *OrderService) dispatch(kind string, orderID uint, send func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotificationTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			metrics.NotificationsFailed.WithLabelValues(kind).Inc()
			s.logger.Error("notification failed", "error", &NotificationError{Kind: kind, OrderID: orderID, Err: err})
			return
		}
		s.logger.Debug("notification sent", "kind", kind, "order_id", orderID)
	}()
}

// publish sends an order event inline so one order's events leave in the
// order they happened. A failure is logged and never reaches the caller.
func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	event := events.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Timestamp:  s.now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.EventTimeout)
	defer cancel()

	if err := s.events.Publish(ctx, event); err != nil {
		metrics.NotificationsFailed.WithLabelValues("event:" + eventType).Inc()
		s.logger.Error("failed to publish order event", "error", err, "type", eventType, "order_id", order.ID)
	}
}

func errEmptyCart() *ValidationError {
	return &ValidationError{Field: "cart", Message: "Your cart is empty", RedirectTo: "/cart"}
}

func lockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, persistenceError("lock order", err)
	}
	return &order, nil
}

func findOrder(ctx context.Context, db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, persistenceError("find order", err)
	}
	return &order, nil
}
