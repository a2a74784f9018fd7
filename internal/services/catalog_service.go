package services

import (
	"fmt"
	"log"

	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/repositories"
	"github.com/Antocflores/casino/pkg/feed"
)

// CatalogService handles business logic for the product catalog.
// Quantity edits are an admin concern; placing an order never touches
// stock (manual-reconciliation policy).
type CatalogService struct {
	repo      repositories.ProductRepository
	hub       *feed.Hub
	publisher EventPublisher
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository, hub *feed.Hub, publisher EventPublisher) *CatalogService {
	return &CatalogService{
		repo:      repo,
		hub:       hub,
		publisher: publisher,
	}
}

// GetAllProducts retrieves all products.
func (s *CatalogService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *CatalogService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// UpdateQuantity sets a product's available quantity.
func (s *CatalogService) UpdateQuantity(id string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must not be negative, got %d", quantity)
	}
	if err := s.repo.UpdateQuantity(id, quantity); err != nil {
		return err
	}

	s.hub.Publish(feed.TopicCatalog)
	publishEvent(s.publisher, "catalog.updated", map[string]interface{}{
		"productID": id,
		"quantity":  quantity,
	})
	return nil
}

// SeedDefaults populates an empty catalog with the standard cafeteria
// menu. A non-empty catalog is left untouched.
func (s *CatalogService) SeedDefaults() error {
	existing, err := s.repo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to check catalog before seeding: %w", err)
	}
	if len(existing) > 0 {
		log.Println("Products already exist, skipping initial seeding.")
		return nil
	}

	defaults := []models.Product{
		{Name: "Galleta", Price: 800, Quantity: 100},
		{Name: "Bebida", Price: 1000, Quantity: 200},
		{Name: "Empanada", Price: 2800, Quantity: 300},
		{Name: "Almuerzo", Price: 3300, Quantity: 150},
	}
	for i := range defaults {
		if err := s.repo.Create(&defaults[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", defaults[i].Name, err)
		}
		log.Printf("Seeded product: %s (ID: %s)", defaults[i].Name, defaults[i].ID)
	}
	return nil
}
