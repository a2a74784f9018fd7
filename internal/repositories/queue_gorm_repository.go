package repositories

import (
	"fmt"
	"time"

	"github.com/Antocflores/casino/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMQueueRepository is a GORM implementation of QueueRepository.
type GORMQueueRepository struct {
	db *gorm.DB
}

// NewGORMQueueRepository creates a new instance of GORMQueueRepository.
func NewGORMQueueRepository(db *gorm.DB) *GORMQueueRepository {
	return &GORMQueueRepository{
		db: db,
	}
}

// GetAll retrieves all queue entries from the database, oldest first.
func (r *GORMQueueRepository) GetAll() ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	if err := r.db.Order("created_at asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get all queue entries: %w", err)
	}
	return entries, nil
}

// GetByID retrieves a single queue entry by its ID from the database.
func (r *GORMQueueRepository) GetByID(id string) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := r.db.First(&entry, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("queue entry with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get queue entry by ID %s: %w", id, err)
	}
	return &entry, nil
}

// GetActive retrieves waiting and notified entries in FIFO order.
func (r *GORMQueueRepository) GetActive() ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := r.db.
		Where("status IN ?", []models.QueueStatus{models.QueueStatusWaiting, models.QueueStatusNotified}).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active queue entries: %w", err)
	}
	return entries, nil
}

// Create creates a new queue entry in the database.
func (r *GORMQueueRepository) Create(entry *models.QueueEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of a queue entry.
func (r *GORMQueueRepository) UpdateStatus(id string, status models.QueueStatus) error {
	res := r.db.Model(&models.QueueEntry{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for queue entry %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("queue entry with ID %s not found for status update", id)
	}
	return nil
}

// SetNotified moves an entry to notified and stamps NotifiedAt.
func (r *GORMQueueRepository) SetNotified(id string, at time.Time) error {
	res := r.db.Model(&models.QueueEntry{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      models.QueueStatusNotified,
		"notified_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to notify queue entry %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("queue entry with ID %s not found for notification", id)
	}
	return nil
}
