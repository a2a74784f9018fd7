package models

import "time"

// Product represents a catalog item sold at the cafeteria counter.
// Price is in whole currency units; the catalog never deals in cents.
type Product struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" validate:"required,min=2,max=100"`
	Price     int       `json:"price" validate:"required,gt=0"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
