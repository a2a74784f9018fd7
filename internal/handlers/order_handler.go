package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Antocflores/casino/internal/middleware"
	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandlePlaceOrder)
}

// HandleGetOrders lists orders: admins see everything, buyers see their own.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var (
		orders []models.Order
		err    error
	)
	if role, _ := c.Locals("role").(string); role == string(models.RoleAdmin) {
		orders, err = h.service.GetAllOrders()
	} else {
		orders, err = h.service.GetOrdersByUser(middleware.UserID(c))
	}
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order. Buyers may only read their own.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}

	role, _ := c.Locals("role").(string)
	if role != string(models.RoleAdmin) && order.UserID != middleware.UserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not your order",
		})
	}
	return c.JSON(order)
}

// HandlePlaceOrder turns the session user's cart into an order and a
// queue entry.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	order, entry, err := h.service.PlaceOrder(userID)
	if err != nil {
		log.Printf("Error placing order for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Cart is empty",
			})
		case errors.Is(err, services.ErrActiveOrderExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "You already have an order in the queue",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not place order",
				"error":   err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":       order,
		"queue_entry": entry,
	})
}
