package services

import (
	"github.com/Kariqs/amexan-storefront/models"
	"github.com/shopspring/decimal"
)

// PricingRule turns cart lines into totals. Shipping is free once the items
// price is strictly above FreeShippingThreshold. An empty line list is the
// exception: every total is zero and no shipping fee is charged.
type PricingRule struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPricingRule() PricingRule {
	return PricingRule{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.15"),
	}
}

type Totals struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

func (r PricingRule) Calculate(items []models.CartItem) Totals {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	itemsPrice = itemsPrice.Round(2)

	if len(items) == 0 {
		return Totals{
			ItemsPrice:    decimal.Zero,
			ShippingPrice: decimal.Zero,
			TaxPrice:      decimal.Zero,
			TotalPrice:    decimal.Zero,
		}
	}

	shipping := r.ShippingFee
	if itemsPrice.GreaterThan(r.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := itemsPrice.Mul(r.TaxRate).Round(2)

	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping.Round(2),
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax).Round(2),
	}
}

func (t Totals) apply(cart *models.Cart) {
	cart.ItemsPrice = t.ItemsPrice
	cart.ShippingPrice = t.ShippingPrice
	cart.TaxPrice = t.TaxPrice
	cart.TotalPrice = t.TotalPrice
}
