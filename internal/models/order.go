package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is a single line within an order. Name and Price are snapshots
// taken from the catalog at placement time; later catalog edits do not
// affect placed orders.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// OrderItems is stored as a JSON text column.
type OrderItems []OrderItem

// Value implements driver.Valuer.
func (oi OrderItems) Value() (driver.Value, error) {
	if oi == nil {
		oi = OrderItems{}
	}
	return json.Marshal(oi)
}

// Scan implements sql.Scanner.
func (oi *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*oi = OrderItems{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, oi)
	case string:
		return json.Unmarshal([]byte(v), oi)
	default:
		return fmt.Errorf("cannot scan %T into OrderItems", value)
	}
}

// Order represents a placed order. Immutable except for Status.
type Order struct {
	ID         string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items      OrderItems  `json:"items" gorm:"type:text"`
	TotalPrice int         `json:"total_price"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(20)"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
