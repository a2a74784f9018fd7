package repositories

import (
	"fmt"

	"github.com/Antocflores/casino/internal/models"

	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// Get returns the user's cart, or an empty cart if none is stored.
func (r *GORMCartRepository) Get(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.Cart{UserID: userID, Items: models.CartItems{}}, nil
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	return &cart, nil
}

// Save replaces the user's cart.
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	if err := r.db.Save(cart).Error; err != nil {
		return fmt.Errorf("failed to save cart for user %s: %w", cart.UserID, err)
	}
	return nil
}

// Clear empties the user's cart.
func (r *GORMCartRepository) Clear(userID string) error {
	cart := models.Cart{UserID: userID, Items: models.CartItems{}}
	if err := r.db.Save(&cart).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
