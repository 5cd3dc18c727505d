package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kariqs/amexan-storefront/cache"
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrMissingOwner = errors.New("cart owner is required")

// Owner identifies whose cart is addressed. A signed-in user id always wins
// over the anonymous session cart id.
type Owner struct {
	UserID        uint
	SessionCartID string
}

func (o Owner) IsAuthenticated() bool {
	return o.UserID != 0
}

func (o Owner) key() string {
	if o.UserID != 0 {
		return fmt.Sprintf("user:%d", o.UserID)
	}
	return "session:" + o.SessionCartID
}

func (o Owner) valid() bool {
	return o.UserID != 0 || o.SessionCartID != ""
}

type CartService struct {
	db      *gorm.DB
	cache   cache.CartCache
	pricing PricingRule
	logger  *slog.Logger
	sfg     singleflight.Group
}

func NewCartService(db *gorm.DB, cartCache cache.CartCache, pricing PricingRule, logger *slog.Logger) *CartService {
	if cartCache == nil {
		cartCache = cache.NoopCache{}
	}
	return &CartService{
		db:      db,
		cache:   cartCache,
		pricing: pricing,
		logger:  logger,
	}
}

// GetCart returns the owner's cart, or an unsaved empty cart when the owner
// has none yet.
func (s *CartService) GetCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	if !owner.valid() {
		return nil, ErrMissingOwner
	}

	v, err, _ := s.sfg.Do(owner.key(), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, owner.key())
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", "owner", owner.key(), "error", err)
		}

		cart, err = findCart(ctx, s.db, owner)
		if errors.Is(err, ErrCartNotFound) {
			return emptyCart(owner), nil
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, owner.key(), cart); err != nil {
			s.logger.Warn("cart cache set failed", "owner", owner.key(), "error", err)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

// GetOrCreateCart returns the owner's cart, creating an empty one if absent.
func (s *CartService) GetOrCreateCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	if !owner.valid() {
		return nil, ErrMissingOwner
	}
	return getOrCreateCart(ctx, s.db, owner)
}

func (s *CartService) AddItem(ctx context.Context, owner Owner, productID uint, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return nil, &ValidationError{Field: "qty", Message: "Quantity must be at least 1"}
	}
	return s.mutate(ctx, owner, func(tx *gorm.DB, cart *models.Cart) error {
		product, err := findProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		item, found := lineFor(cart, productID)
		if found {
			if item.Qty+qty > product.Stock {
				return ErrInsufficientStock
			}
			if err := tx.Model(item).Update("qty", item.Qty+qty).Error; err != nil {
				return persistenceError("update cart item", err)
			}
			return nil
		}

		if qty > product.Stock {
			return ErrInsufficientStock
		}
		line := models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Slug:      product.Slug,
			Image:     firstImage(product),
			Qty:       qty,
			Price:     product.Price,
		}
		if err := tx.Create(&line).Error; err != nil {
			return persistenceError("create cart item", err)
		}
		return nil
	})
}

// UpdateQuantity sets an existing line's quantity. Zero removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, owner Owner, productID uint, qty int) (*models.Cart, error) {
	if qty < 0 {
		return nil, &ValidationError{Field: "qty", Message: "Quantity must not be negative"}
	}
	if qty == 0 {
		return s.RemoveItem(ctx, owner, productID)
	}
	return s.mutate(ctx, owner, func(tx *gorm.DB, cart *models.Cart) error {
		item, found := lineFor(cart, productID)
		if !found {
			return ErrCartItemMissing
		}
		product, err := findProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if qty > product.Stock {
			return ErrInsufficientStock
		}
		if err := tx.Model(item).Update("qty", qty).Error; err != nil {
			return persistenceError("update cart item", err)
		}
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, owner Owner, productID uint) (*models.Cart, error) {
	return s.mutate(ctx, owner, func(tx *gorm.DB, cart *models.Cart) error {
		item, found := lineFor(cart, productID)
		if !found {
			return ErrCartItemMissing
		}
		if err := tx.Delete(item).Error; err != nil {
			return persistenceError("delete cart item", err)
		}
		return nil
	})
}

// MergeOnLogin hands the anonymous session cart to the user who just signed
// in. The user's previous cart is discarded and lines are not merged.
func (s *CartService) MergeOnLogin(ctx context.Context, sessionCartID string, userID uint) error {
	if sessionCartID == "" || userID == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessionCart models.Cart
		err := tx.Where("session_cart_id = ? AND user_id IS NULL", sessionCartID).First(&sessionCart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return persistenceError("find session cart", err)
		}

		var previous []models.Cart
		if err := tx.Where("user_id = ?", userID).Find(&previous).Error; err != nil {
			return persistenceError("find user carts", err)
		}
		for _, cart := range previous {
			if err := deleteCart(tx, cart.ID); err != nil {
				return err
			}
		}

		// rotate the session id so the old cookie starts a fresh cart
		if err := tx.Model(&sessionCart).Updates(map[string]any{
			"user_id":         userID,
			"session_cart_id": uuid.NewString(),
		}).Error; err != nil {
			return persistenceError("assign session cart", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(Owner{SessionCartID: sessionCartID}, Owner{UserID: userID})
	return nil
}

func (s *CartService) mutate(ctx context.Context, owner Owner, fn func(tx *gorm.DB, cart *models.Cart) error) (*models.Cart, error) {
	if !owner.valid() {
		return nil, ErrMissingOwner
	}

	var result *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := getOrCreateCart(ctx, tx, owner)
		if err != nil {
			return err
		}
		if err := fn(tx, cart); err != nil {
			return err
		}
		result, err = s.recompute(ctx, tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(owner)
	return result, nil
}

// recompute reloads the cart lines and stores totals derived from them.
func (s *CartService) recompute(ctx context.Context, tx *gorm.DB, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := tx.WithContext(ctx).Preload("Items", orderByID).First(&cart, cartID).Error; err != nil {
		return nil, persistenceError("reload cart", err)
	}

	totals := s.pricing.Calculate(cart.Items)
	if err := tx.Model(&cart).Updates(map[string]any{
		"items_price":    totals.ItemsPrice,
		"shipping_price": totals.ShippingPrice,
		"tax_price":      totals.TaxPrice,
		"total_price":    totals.TotalPrice,
	}).Error; err != nil {
		return nil, persistenceError("update cart totals", err)
	}
	totals.apply(&cart)
	return &cart, nil
}

func (s *CartService) invalidate(owners ...Owner) {
	keys := make([]string, 0, len(owners))
	for _, o := range owners {
		keys = append(keys, o.key())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("cart cache invalidate failed", "owners", keys, "error", err)
	}
}

func findCart(ctx context.Context, db *gorm.DB, owner Owner) (*models.Cart, error) {
	query := db.WithContext(ctx).Preload("Items", orderByID)
	if owner.UserID != 0 {
		query = query.Where("user_id = ?", owner.UserID)
	} else {
		query = query.Where("session_cart_id = ? AND user_id IS NULL", owner.SessionCartID)
	}

	var cart models.Cart
	err := query.First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, persistenceError("find cart", err)
	}
	return &cart, nil
}

func getOrCreateCart(ctx context.Context, db *gorm.DB, owner Owner) (*models.Cart, error) {
	cart, err := findCart(ctx, db, owner)
	if !errors.Is(err, ErrCartNotFound) {
		return cart, err
	}

	created := emptyCart(owner)
	if owner.UserID != 0 {
		created.SessionCartID = uuid.NewString()
	}
	// a concurrent request may have created it first
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(created).Error; err != nil {
		return nil, persistenceError("create cart", err)
	}
	return findCart(ctx, db, owner)
}

func emptyCart(owner Owner) *models.Cart {
	cart := &models.Cart{
		SessionCartID: owner.SessionCartID,
		Items:         []models.CartItem{},
	}
	if owner.UserID != 0 {
		id := owner.UserID
		cart.UserID = &id
	}
	Totals{}.apply(cart)
	return cart
}

// clearCart empties the cart lines and zeroes every total.
func clearCart(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return persistenceError("clear cart items", err)
	}
	if err := tx.Model(&models.Cart{ID: cartID}).Updates(map[string]any{
		"items_price":    0,
		"shipping_price": 0,
		"tax_price":      0,
		"total_price":    0,
	}).Error; err != nil {
		return persistenceError("zero cart totals", err)
	}
	return nil
}

func deleteCart(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return persistenceError("delete cart items", err)
	}
	if err := tx.Delete(&models.Cart{}, cartID).Error; err != nil {
		return persistenceError("delete cart", err)
	}
	return nil
}

func lineFor(cart *models.Cart, productID uint) (*models.CartItem, bool) {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i], true
		}
	}
	return nil, false
}

func firstImage(product *models.Product) string {
	if len(product.Images) > 0 {
		return product.Images[0].Url
	}
	return product.Banner
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
