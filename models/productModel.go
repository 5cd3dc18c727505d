package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductImage struct {
	gorm.Model
	Url       string `json:"url" binding:"required"`
	ProductID uint   `json:"productId" binding:"required"`
}

type Product struct {
	gorm.Model
	Name        string          `json:"name" binding:"required,min=3"`
	Slug        string          `json:"slug" binding:"required,min=3" gorm:"size:191;uniqueIndex;not null"`
	Category    string          `json:"category" binding:"required" gorm:"size:191;index"`
	Brand       string          `json:"brand" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock"`
	Rating      decimal.Decimal `json:"rating" gorm:"type:decimal(3,2);default:0"`
	NumReviews  int             `json:"numReviews"`
	IsFeatured  bool            `json:"isFeatured"`
	Banner      string          `json:"banner"`
	Images      []ProductImage  `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
