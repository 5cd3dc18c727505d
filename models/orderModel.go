package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"email_address"`
	PricePaid    string `json:"pricePaid"`
}

// Order is a snapshot of a cart at checkout. Only the paid, delivered and
// payment result columns change after creation.
type Order struct {
	gorm.Model
	UserID          uint                                `json:"userId" gorm:"index;not null"`
	User            User                                `json:"user" gorm:"constraint:OnDelete:CASCADE"`
	ShippingAddress datatypes.JSONType[ShippingAddress] `json:"shippingAddress"`
	PaymentMethod   string                              `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal                     `json:"itemsPrice" gorm:"type:decimal(12,2);not null"`
	ShippingPrice   decimal.Decimal                     `json:"shippingPrice" gorm:"type:decimal(12,2);not null"`
	TaxPrice        decimal.Decimal                     `json:"taxPrice" gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal                     `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	IsPaid          bool                                `json:"isPaid" gorm:"not null;default:false"`
	PaidAt          *time.Time                          `json:"paidAt"`
	IsDelivered     bool                                `json:"isDelivered" gorm:"not null;default:false"`
	DeliveredAt     *time.Time                          `json:"deliveredAt"`
	PaymentResult   datatypes.JSONType[PaymentResult]   `json:"paymentResult"`
	OrderItems      []OrderItem                         `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	gorm.Model
	OrderID   uint            `json:"orderId" gorm:"index;not null"`
	ProductID uint            `json:"productId" gorm:"index;not null"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
}

type PayPalApproval struct {
	OrderID string `json:"orderID" binding:"required"`
}
