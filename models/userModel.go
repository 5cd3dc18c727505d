package models

import (
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type ShippingAddress struct {
	FullName      string `json:"fullName" binding:"required,min=3"`
	StreetAddress string `json:"streetAddress" binding:"required,min=3"`
	City          string `json:"city" binding:"required,min=2"`
	PostalCode    string `json:"postalCode" binding:"required,min=2"`
	Country       string `json:"country" binding:"required,min=2"`
}

// IsZero reports whether no address has been saved yet.
func (a ShippingAddress) IsZero() bool {
	return strings.TrimSpace(a.StreetAddress) == "" && strings.TrimSpace(a.City) == ""
}

type User struct {
	gorm.Model
	Name          string                              `json:"name"`
	Email         string                              `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Password      string                              `json:"-"`
	Role          string                              `json:"role" gorm:"size:32;default:user"`
	Address       datatypes.JSONType[ShippingAddress] `json:"address"`
	PaymentMethod string                              `json:"paymentMethod"`
}

type SignupData struct {
	Name     string `json:"name" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginData struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
