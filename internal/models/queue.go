package models

import "time"

// QueueStatus is the lifecycle state of a queue entry.
//
// waiting -> notified -> completed | missed. The two right-hand states are
// terminal; notified starts the pickup countdown.
type QueueStatus string

const (
	QueueStatusWaiting   QueueStatus = "waiting"
	QueueStatusNotified  QueueStatus = "notified"
	QueueStatusMissed    QueueStatus = "missed"
	QueueStatusCompleted QueueStatus = "completed"
)

// Active reports whether the entry still occupies a place in the line.
func (s QueueStatus) Active() bool {
	return s == QueueStatusWaiting || s == QueueStatusNotified
}

// QueueEntry represents one order's place in the physical pickup line.
// CreatedAt is the FIFO ordering key. NotifiedAt is set exactly once, on
// the waiting -> notified transition.
type QueueEntry struct {
	ID         string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string      `json:"order_id" gorm:"index;type:varchar(36)"`
	UserID     string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Status     QueueStatus `json:"status" gorm:"type:varchar(20)"`
	CreatedAt  time.Time   `json:"created_at"`
	NotifiedAt *time.Time  `json:"notified_at,omitempty"`
}
