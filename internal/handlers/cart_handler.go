package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Antocflores/casino/internal/middleware"
	"github.com/Antocflores/casino/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the session user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// HandleGetCart returns the cart lines priced from the current catalog
// plus the running total.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	lines, total, err := h.service.GetCartLines(userID)
	if err != nil {
		log.Printf("Error getting cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"items":       lines,
		"total_price": total,
	})
}

// AddItemRequest represents the body of an add-to-cart request.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// HandleAddItem adds a quantity of a product to the cart, subject to the
// stock guard.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-to-cart body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id and a positive quantity are required",
		})
	}

	if err := h.service.AddItem(userID, req.ProductID, req.Quantity); err != nil {
		log.Printf("Error adding product %s to cart of user %s: %v", req.ProductID, userID, err)
		if errors.Is(err, services.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Insufficient stock",
				"error":   err.Error(),
			})
		}
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", req.ProductID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item added to cart",
	})
}

// HandleRemoveItem decrements a product's cart quantity by one.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	productID := c.Params("productId")

	if err := h.service.RemoveItem(userID, productID); err != nil {
		log.Printf("Error removing product %s from cart of user %s: %v", productID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove item from cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if err := h.service.Clear(userID); err != nil {
		log.Printf("Error clearing cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared",
	})
}
