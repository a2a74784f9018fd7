package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/repositories"
	"github.com/Antocflores/casino/pkg/feed"
)

var (
	// ErrQueueEmpty is returned by Advance when no waiting entry exists.
	ErrQueueEmpty = errors.New("no waiting entries in the queue")
	// ErrNotInQueue is returned when a user has no active queue entry.
	ErrNotInQueue = errors.New("user is not in the queue")
)

// QueueService drives the pickup queue lifecycle:
//
//	waiting -> notified -> completed | missed
//
// Advance is admin-invoked and global FIFO. A notified entry has a fixed
// pickup window; the watcher expires overdue entries to missed. Every
// transition is a plain field update, last writer wins; in particular two
// concurrent Advance calls can leave two entries notified at once.
type QueueService struct {
	queueRepo    repositories.QueueRepository
	orderRepo    repositories.OrderRepository
	hub          *feed.Hub
	publisher    EventPublisher
	pickupWindow time.Duration
	tick         time.Duration
	now          func() time.Time
}

// NewQueueService creates a new QueueService. The clock is injected so the
// countdown and expiry logic are testable.
func NewQueueService(
	queueRepo repositories.QueueRepository,
	orderRepo repositories.OrderRepository,
	hub *feed.Hub,
	publisher EventPublisher,
	pickupWindow time.Duration,
	tick time.Duration,
	now func() time.Time,
) *QueueService {
	if pickupWindow <= 0 {
		pickupWindow = 5 * time.Minute
	}
	if tick <= 0 {
		tick = time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &QueueService{
		queueRepo:    queueRepo,
		orderRepo:    orderRepo,
		hub:          hub,
		publisher:    publisher,
		pickupWindow: pickupWindow,
		tick:         tick,
		now:          now,
	}
}

// PositionOf returns the 1-based rank of userID among active entries
// ordered by creation time, oldest first. Pure: the entries slice must
// already be the full active set.
func PositionOf(entries []models.QueueEntry, userID string) (int, bool) {
	rank := 0
	var found bool
	var own time.Time
	for _, e := range entries {
		if e.UserID == userID {
			found = true
			own = e.CreatedAt
			break
		}
	}
	if !found {
		return 0, false
	}
	for _, e := range entries {
		if e.CreatedAt.Before(own) {
			rank++
		}
	}
	return rank + 1, true
}

// ActiveEntries returns the waiting and notified entries in FIFO order.
func (s *QueueService) ActiveEntries() ([]models.QueueEntry, error) {
	return s.queueRepo.GetActive()
}

// Position computes the user's current 1-based rank from a fresh snapshot
// of the active queue.
func (s *QueueService) Position(userID string) (int, error) {
	entries, err := s.queueRepo.GetActive()
	if err != nil {
		return 0, fmt.Errorf("failed to load queue: %w", err)
	}
	pos, ok := PositionOf(entries, userID)
	if !ok {
		return 0, ErrNotInQueue
	}
	return pos, nil
}

// EntryForUser returns the user's active queue entry, if any.
func (s *QueueService) EntryForUser(userID string) (*models.QueueEntry, error) {
	entries, err := s.queueRepo.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}
	for i := range entries {
		if entries[i].UserID == userID {
			return &entries[i], nil
		}
	}
	return nil, ErrNotInQueue
}

// Advance notifies the earliest waiting entry, stamping NotifiedAt with
// the current time. Entries already notified are skipped: advancing moves
// the line, it does not re-notify.
func (s *QueueService) Advance() (*models.QueueEntry, error) {
	entries, err := s.queueRepo.GetActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	var next *models.QueueEntry
	for i := range entries {
		if entries[i].Status == models.QueueStatusWaiting {
			next = &entries[i]
			break
		}
	}
	if next == nil {
		return nil, ErrQueueEmpty
	}

	notifiedAt := s.now()
	if err := s.queueRepo.SetNotified(next.ID, notifiedAt); err != nil {
		return nil, fmt.Errorf("failed to notify queue entry %s: %w", next.ID, err)
	}
	next.Status = models.QueueStatusNotified
	next.NotifiedAt = &notifiedAt

	s.hub.Publish(feed.TopicQueue)
	publishEvent(s.publisher, "queue.advanced", map[string]interface{}{
		"entryID":    next.ID,
		"orderID":    next.OrderID,
		"userID":     next.UserID,
		"notifiedAt": notifiedAt,
	})
	return next, nil
}

// Complete marks a queue entry and its linked order as completed.
// Re-invoking on a completed entry is a harmless redundant write.
func (s *QueueService) Complete(entryID string) error {
	entry, err := s.queueRepo.GetByID(entryID)
	if err != nil {
		return err
	}
	if err := s.queueRepo.UpdateStatus(entry.ID, models.QueueStatusCompleted); err != nil {
		return fmt.Errorf("failed to complete queue entry %s: %w", entry.ID, err)
	}
	if err := s.orderRepo.UpdateStatus(entry.OrderID, models.OrderStatusCompleted); err != nil {
		return fmt.Errorf("queue entry %s completed but order update failed: %w", entry.ID, err)
	}

	s.hub.Publish(feed.TopicQueue)
	s.hub.Publish(feed.TopicOrders)
	publishEvent(s.publisher, "queue.completed", map[string]interface{}{
		"entryID": entry.ID,
		"orderID": entry.OrderID,
	})
	return nil
}

// MarkMissed marks a queue entry as missed and cancels its linked order.
// This is the admin action; countdown expiry goes through Expire instead,
// which leaves the order untouched.
func (s *QueueService) MarkMissed(entryID string) error {
	entry, err := s.queueRepo.GetByID(entryID)
	if err != nil {
		return err
	}
	if err := s.queueRepo.UpdateStatus(entry.ID, models.QueueStatusMissed); err != nil {
		return fmt.Errorf("failed to mark queue entry %s as missed: %w", entry.ID, err)
	}
	if err := s.orderRepo.UpdateStatus(entry.OrderID, models.OrderStatusCancelled); err != nil {
		return fmt.Errorf("queue entry %s missed but order update failed: %w", entry.ID, err)
	}

	s.hub.Publish(feed.TopicQueue)
	s.hub.Publish(feed.TopicOrders)
	publishEvent(s.publisher, "queue.missed", map[string]interface{}{
		"entryID": entry.ID,
		"orderID": entry.OrderID,
	})
	return nil
}

// Expire moves an overdue notified entry to missed without touching the
// linked order.
func (s *QueueService) Expire(entryID string) error {
	if err := s.queueRepo.UpdateStatus(entryID, models.QueueStatusMissed); err != nil {
		return fmt.Errorf("failed to expire queue entry %s: %w", entryID, err)
	}

	s.hub.Publish(feed.TopicQueue)
	publishEvent(s.publisher, "queue.expired", map[string]interface{}{
		"entryID": entryID,
	})
	return nil
}

// Now returns the current time on the service clock.
func (s *QueueService) Now() time.Time {
	return s.now()
}

// Remaining returns the whole seconds left before the pickup deadline
// (notifiedAt plus the pickup window), clamped at zero.
func (s *QueueService) Remaining(notifiedAt, now time.Time) int {
	left := notifiedAt.Add(s.pickupWindow).Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// Watch runs the expiry loop until the context is cancelled. It rechecks
// the queue on every tick and on every queue change signal, always from a
// fresh snapshot.
func (s *QueueService) Watch(ctx context.Context) {
	changes, cancel := s.hub.Subscribe(feed.TopicQueue)
	defer cancel()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
		case <-ticker.C:
		}
		s.ExpireOverdue()
	}
}

// ExpireOverdue expires every notified entry whose countdown has reached
// zero. One pass of the watcher loop.
func (s *QueueService) ExpireOverdue() {
	entries, err := s.queueRepo.GetActive()
	if err != nil {
		log.Printf("Queue watcher: failed to load queue: %v", err)
		return
	}
	now := s.now()
	for _, e := range entries {
		if e.Status != models.QueueStatusNotified || e.NotifiedAt == nil {
			continue
		}
		if s.Remaining(*e.NotifiedAt, now) == 0 {
			if err := s.Expire(e.ID); err != nil {
				log.Printf("Queue watcher: failed to expire entry %s: %v", e.ID, err)
			} else {
				log.Printf("Queue entry %s expired after pickup window", e.ID)
			}
		}
	}
}
