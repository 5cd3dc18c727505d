package services

import (
	"testing"

	"github.com/Kariqs/amexan-storefront/models"
)

func TestPricingRule_Calculate(t *testing.T) {
	rule := DefaultPricingRule()

	tests := []struct {
		name                             string
		items                            []models.CartItem
		itemsPrice, shipping, tax, total string
	}{
		{
			name:       "empty cart is all zero",
			itemsPrice: "0", shipping: "0", tax: "0", total: "0",
		},
		{
			name:       "exactly at threshold pays shipping",
			items:      []models.CartItem{{Qty: 2, Price: dec("50")}},
			itemsPrice: "100", shipping: "10", tax: "15", total: "125",
		},
		{
			name:       "above threshold ships free",
			items:      []models.CartItem{{Qty: 1, Price: dec("100.01")}},
			itemsPrice: "100.01", shipping: "0", tax: "15", total: "115.01",
		},
		{
			name:       "tax rounds to cents",
			items:      []models.CartItem{{Qty: 3, Price: dec("3.33")}},
			itemsPrice: "9.99", shipping: "10", tax: "1.5", total: "21.49",
		},
		{
			name: "several lines",
			items: []models.CartItem{
				{Qty: 1, Price: dec("19.99")},
				{Qty: 2, Price: dec("5.50")},
			},
			itemsPrice: "30.99", shipping: "10", tax: "4.65", total: "45.64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rule.Calculate(tt.items)
			assertDecimal(t, tt.itemsPrice, got.ItemsPrice, "items")
			assertDecimal(t, tt.shipping, got.ShippingPrice, "shipping")
			assertDecimal(t, tt.tax, got.TaxPrice, "tax")
			assertDecimal(t, tt.total, got.TotalPrice, "total")
		})
	}
}
