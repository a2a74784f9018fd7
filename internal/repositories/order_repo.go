package repositories

import (
	"github.com/Antocflores/casino/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are append-only apart from status transitions.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
}
