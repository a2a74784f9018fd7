package services

import (
	"errors"
	"fmt"

	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/repositories"
)

// ErrInsufficientStock is returned when a requested cart quantity would
// exceed the currently advertised stock. The check is advisory: nothing is
// reserved, so two buyers can still race for the same units.
var ErrInsufficientStock = errors.New("insufficient stock")

// CartService handles business logic for per-user carts.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's raw cart.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	return s.cartRepo.Get(userID)
}

// GetCartLines joins the cart with the catalog, pricing each line at the
// product's current price, and returns the lines plus the cart total.
func (s *CartService) GetCartLines(userID string) ([]models.CartLine, int, error) {
	cart, err := s.cartRepo.Get(userID)
	if err != nil {
		return nil, 0, err
	}

	var lines []models.CartLine
	total := 0
	for productID, quantity := range cart.Items {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			// A product removed from the catalog after it entered a cart is
			// skipped; the line resurfaces nowhere and the order total stays
			// honest.
			continue
		}
		subtotal := product.Price * quantity
		lines = append(lines, models.CartLine{
			Product:  *product,
			Quantity: quantity,
			Subtotal: subtotal,
		})
		total += subtotal
	}
	return lines, total, nil
}

// AddItem increases the cart quantity for a product after checking the
// stock guard: cart quantity plus the requested delta must not exceed the
// advertised stock.
func (s *CartService) AddItem(userID, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return fmt.Errorf("cannot add to cart: %w", err)
	}

	cart, err := s.cartRepo.Get(userID)
	if err != nil {
		return err
	}

	current := cart.Items[productID]
	if current+quantity > product.Quantity {
		return fmt.Errorf("%w for %s: requested %d, only %d left",
			ErrInsufficientStock, product.Name, quantity, product.Quantity-current)
	}

	cart.Items[productID] = current + quantity
	return s.cartRepo.Save(cart)
}

// RemoveItem decrements a product's cart quantity by one, dropping the
// line entirely when it reaches zero.
func (s *CartService) RemoveItem(userID, productID string) error {
	cart, err := s.cartRepo.Get(userID)
	if err != nil {
		return err
	}

	current, ok := cart.Items[productID]
	if !ok {
		return nil
	}
	if current <= 1 {
		delete(cart.Items, productID)
	} else {
		cart.Items[productID] = current - 1
	}
	return s.cartRepo.Save(cart)
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID string) error {
	return s.cartRepo.Clear(userID)
}
