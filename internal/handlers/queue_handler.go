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

// QueueHandler handles HTTP requests for the virtual pickup queue.
type QueueHandler struct {
	service *services.QueueService
}

// NewQueueHandler creates a new QueueHandler.
func NewQueueHandler(service *services.QueueService) *QueueHandler {
	return &QueueHandler{
		service: service,
	}
}

// RegisterRoutes registers the queue routes with the Fiber app.
func (h *QueueHandler) RegisterRoutes(router fiber.Router) {
	queueRoutes := router.Group("/queue")
	queueRoutes.Get("/position", h.HandleGetPosition)
	queueRoutes.Get("/", middleware.AdminRequired(), h.HandleGetQueue)
	queueRoutes.Post("/advance", middleware.AdminRequired(), h.HandleAdvance)
	queueRoutes.Post("/:id/complete", middleware.AdminRequired(), h.HandleComplete)
	queueRoutes.Post("/:id/miss", middleware.AdminRequired(), h.HandleMarkMissed)
}

// HandleGetQueue returns the active queue in FIFO order (admin only).
func (h *QueueHandler) HandleGetQueue(c *fiber.Ctx) error {
	entries, err := h.service.ActiveEntries()
	if err != nil {
		log.Printf("Error getting active queue: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve queue",
			"error":   err.Error(),
		})
	}
	return c.JSON(entries)
}

// HandleGetPosition returns the session user's rank, status, and — while
// notified — the pickup countdown in seconds.
func (h *QueueHandler) HandleGetPosition(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	entry, err := h.service.EntryForUser(userID)
	if err != nil {
		if errors.Is(err, services.ErrNotInQueue) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "You are not in the queue",
			})
		}
		log.Printf("Error getting queue entry for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve queue status",
			"error":   err.Error(),
		})
	}

	position, err := h.service.Position(userID)
	if err != nil {
		log.Printf("Error computing position for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not compute queue position",
			"error":   err.Error(),
		})
	}

	resp := fiber.Map{
		"entry":    entry,
		"position": position,
	}
	if entry.Status == models.QueueStatusNotified && entry.NotifiedAt != nil {
		resp["countdown_seconds"] = h.service.Remaining(*entry.NotifiedAt, h.service.Now())
	}
	return c.JSON(resp)
}

// HandleAdvance notifies the earliest waiting entry (admin only).
func (h *QueueHandler) HandleAdvance(c *fiber.Ctx) error {
	entry, err := h.service.Advance()
	if err != nil {
		if errors.Is(err, services.ErrQueueEmpty) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "No waiting orders in the queue",
			})
		}
		log.Printf("Error advancing queue: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not advance queue",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order of %s notified", entry.UserID),
		"entry":   entry,
	})
}

// HandleComplete marks an entry and its order as completed (admin only).
func (h *QueueHandler) HandleComplete(c *fiber.Ctx) error {
	entryID := c.Params("id")
	if err := h.service.Complete(entryID); err != nil {
		log.Printf("Error completing queue entry %s: %v", entryID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Queue entry with ID %s not found", entryID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete order",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Order marked as completed",
	})
}

// HandleMarkMissed marks an entry as missed and cancels its order (admin only).
func (h *QueueHandler) HandleMarkMissed(c *fiber.Ctx) error {
	entryID := c.Params("id")
	if err := h.service.MarkMissed(entryID); err != nil {
		log.Printf("Error marking queue entry %s as missed: %v", entryID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Queue entry with ID %s not found", entryID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not mark order as missed",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Order marked as missed",
	})
}
