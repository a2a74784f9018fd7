package repositories

import (
	"sync"

	"github.com/Antocflores/casino/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// Get returns the user's cart, or an empty cart if none is stored.
func (r *MockCartRepository) Get(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return &models.Cart{UserID: userID, Items: models.CartItems{}}, nil
	}
	// Copy the items map so callers cannot mutate the stored cart.
	items := make(models.CartItems, len(cart.Items))
	for id, qty := range cart.Items {
		items[id] = qty
	}
	cart.Items = items
	return &cart, nil
}

// Save replaces the user's cart.
func (r *MockCartRepository) Save(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.Items == nil {
		cart.Items = models.CartItems{}
	}
	r.carts[cart.UserID] = *cart
	return nil
}

// Clear empties the user's cart.
func (r *MockCartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[userID] = models.Cart{UserID: userID, Items: models.CartItems{}}
	return nil
}
