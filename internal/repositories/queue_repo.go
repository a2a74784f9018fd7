package repositories

import (
	"time"

	"github.com/Antocflores/casino/internal/models"
)

// QueueRepository defines the interface for pickup-queue data access.
// GetActive returns only waiting and notified entries, sorted by creation
// time ascending, which is the queue's FIFO order.
type QueueRepository interface {
	GetAll() ([]models.QueueEntry, error)
	GetByID(id string) (*models.QueueEntry, error)
	GetActive() ([]models.QueueEntry, error)
	Create(entry *models.QueueEntry) error
	UpdateStatus(id string, status models.QueueStatus) error
	SetNotified(id string, at time.Time) error
}
