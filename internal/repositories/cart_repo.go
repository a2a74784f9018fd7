package repositories

import (
	"github.com/Antocflores/casino/internal/models"
)

// CartRepository defines the interface for per-user cart data access.
// Get never reports "not found": a user without a stored cart simply has
// an empty one.
type CartRepository interface {
	Get(userID string) (*models.Cart, error)
	Save(cart *models.Cart) error
	Clear(userID string) error
}
