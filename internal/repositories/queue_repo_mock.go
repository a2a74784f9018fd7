package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Antocflores/casino/internal/models"

	"github.com/google/uuid"
)

// MockQueueRepository is an in-memory implementation of QueueRepository.
type MockQueueRepository struct {
	entries map[string]models.QueueEntry
	mu      sync.RWMutex
}

// NewMockQueueRepository creates a new instance of MockQueueRepository.
func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{
		entries: make(map[string]models.QueueEntry),
	}
}

// GetAll returns all queue entries, oldest first.
func (r *MockQueueRepository) GetAll() ([]models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entryList := make([]models.QueueEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entryList = append(entryList, e)
	}
	sortByCreatedAt(entryList)
	return entryList, nil
}

// GetByID returns a queue entry by its ID.
func (r *MockQueueRepository) GetByID(id string) (*models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("queue entry with ID %s not found", id)
	}
	return &entry, nil
}

// GetActive returns waiting and notified entries in FIFO order.
func (r *MockQueueRepository) GetActive() ([]models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entryList []models.QueueEntry
	for _, e := range r.entries {
		if e.Status.Active() {
			entryList = append(entryList, e)
		}
	}
	sortByCreatedAt(entryList)
	return entryList, nil
}

// Create adds a new queue entry.
func (r *MockQueueRepository) Create(entry *models.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.entries[entry.ID] = *entry
	return nil
}

// UpdateStatus updates the status of a queue entry.
func (r *MockQueueRepository) UpdateStatus(id string, status models.QueueStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("queue entry with ID %s not found for status update", id)
	}
	entry.Status = status
	r.entries[id] = entry
	return nil
}

// SetNotified moves an entry to notified and stamps NotifiedAt.
func (r *MockQueueRepository) SetNotified(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("queue entry with ID %s not found for notification", id)
	}
	entry.Status = models.QueueStatusNotified
	entry.NotifiedAt = &at
	r.entries[id] = entry
	return nil
}

func sortByCreatedAt(entries []models.QueueEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
