package initializers

import (
	"fmt"

	"github.com/Kariqs/amexan-storefront/models"
	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
