package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/repositories"
	"github.com/Antocflores/casino/pkg/feed"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCart is returned when placing an order from an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrActiveOrderExists is returned when the user already holds a
	// waiting or notified place in the queue.
	ErrActiveOrderExists = errors.New("an active order is already in the queue")
)

// OrderService handles order placement and retrieval. Placement performs
// three sequential writes (order, queue entry, cart clear); there is no
// rollback on partial failure, only a logged error and a failed response.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	queueRepo   repositories.QueueRepository
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	hub         *feed.Hub
	publisher   EventPublisher
	now         func() time.Time
}

// NewOrderService creates a new OrderService. The clock is injected so
// order and queue timestamps are testable.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	queueRepo repositories.QueueRepository,
	cartRepo repositories.CartRepository,
	productRepo repositories.ProductRepository,
	hub *feed.Hub,
	publisher EventPublisher,
	now func() time.Time,
) *OrderService {
	if now == nil {
		now = time.Now
	}
	return &OrderService{
		orderRepo:   orderRepo,
		queueRepo:   queueRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		hub:         hub,
		publisher:   publisher,
		now:         now,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrdersByUser retrieves the orders placed by a user.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// PlaceOrder turns the user's cart into a pending order and a waiting
// queue entry, then clears the cart. Prices and names are snapshotted from
// the catalog at placement time.
func (s *OrderService) PlaceOrder(userID string) (*models.Order, *models.QueueEntry, error) {
	active, err := s.queueRepo.GetActive()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check queue before placing order: %w", err)
	}
	for _, e := range active {
		if e.UserID == userID {
			return nil, nil, ErrActiveOrderExists
		}
	}

	cart, err := s.cartRepo.Get(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	// Stable line order regardless of map iteration.
	productIDs := make([]string, 0, len(cart.Items))
	for id := range cart.Items {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	var items models.OrderItems
	total := 0
	for _, productID := range productIDs {
		quantity := cart.Items[productID]
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot price cart line: %w", err)
		}
		items = append(items, models.OrderItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
		total += product.Price * quantity
	}

	now := s.now()
	order := &models.Order{
		ID:         uuid.New().String(),
		UserID:     userID,
		Items:      items,
		TotalPrice: total,
		Status:     models.OrderStatusPending,
		CreatedAt:  now,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	entry := &models.QueueEntry{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		UserID:    userID,
		Status:    models.QueueStatusWaiting,
		CreatedAt: now,
	}
	if err := s.queueRepo.Create(entry); err != nil {
		// The order record already exists; there is no compensating delete.
		log.Printf("Order %s created but queue entry failed: %v", order.ID, err)
		return nil, nil, fmt.Errorf("failed to enqueue order %s: %w", order.ID, err)
	}

	if err := s.cartRepo.Clear(userID); err != nil {
		log.Printf("Order %s enqueued but cart clear failed for user %s: %v", order.ID, userID, err)
		return nil, nil, fmt.Errorf("failed to clear cart after placing order %s: %w", order.ID, err)
	}

	s.hub.Publish(feed.TopicOrders)
	s.hub.Publish(feed.TopicQueue)
	publishEvent(s.publisher, "order.created", map[string]interface{}{
		"orderID":    order.ID,
		"userID":     order.UserID,
		"totalPrice": order.TotalPrice,
		"status":     order.Status,
	})

	return order, entry, nil
}
