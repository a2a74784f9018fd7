package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CartItems maps product IDs to requested quantities. It is stored as a
// JSON text column so the whole cart is replaced in a single write.
type CartItems map[string]int

// Value implements driver.Valuer.
func (ci CartItems) Value() (driver.Value, error) {
	if ci == nil {
		ci = CartItems{}
	}
	return json.Marshal(ci)
}

// Scan implements sql.Scanner.
func (ci *CartItems) Scan(value interface{}) error {
	if value == nil {
		*ci = CartItems{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ci)
	case string:
		return json.Unmarshal([]byte(v), ci)
	default:
		return fmt.Errorf("cannot scan %T into CartItems", value)
	}
}

// Cart holds a buyer's pending selection. One cart per user.
type Cart struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	Items     CartItems `json:"items" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine is a cart row joined with its catalog product.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal int     `json:"subtotal"`
}
