package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID        uint            `json:"id" gorm:"primarykey"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	CartID    uint            `json:"cartId" gorm:"index;not null"`
	ProductID uint            `json:"productId" gorm:"index;not null"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
}

// Cart is owned either by an anonymous session or, once signed in, by a
// user. Carts are hard deleted so the unique owner indexes stay usable.
type Cart struct {
	ID            uint            `json:"id" gorm:"primarykey"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	SessionCartID string          `json:"sessionCartId" gorm:"size:36;uniqueIndex;not null"`
	UserID        *uint           `json:"userId" gorm:"uniqueIndex"`
	Items         []CartItem      `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ItemsPrice    decimal.Decimal `json:"itemsPrice" gorm:"type:decimal(12,2);not null"`
	ShippingPrice decimal.Decimal `json:"shippingPrice" gorm:"type:decimal(12,2);not null"`
	TaxPrice      decimal.Decimal `json:"taxPrice" gorm:"type:decimal(12,2);not null"`
	TotalPrice    decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
}

type CartItemInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Qty       int  `json:"qty" binding:"required,gt=0"`
}

type CartQuantityInput struct {
	Qty int `json:"qty" binding:"gte=0"`
}
