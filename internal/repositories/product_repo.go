package repositories

import (
	"github.com/Antocflores/casino/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	UpdateQuantity(id string, quantity int) error
	Delete(id string) error
}
