package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidTransition reports whether an admin may move an order from one
// status to another. Only pending orders move; everything else is final.
func ValidTransition(from, to OrderStatus) bool {
	if from != OrderStatusPending {
		return false
	}
	switch to {
	case OrderStatusCompleted, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID     uuid.UUID   `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID   `gorm:"type:uuid;index"`
	Status OrderStatus `gorm:"type:varchar(20);index"`
	Items  []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem snapshots product id and quantity at order time. Price is
// intentionally not copied; it is read live from Product at display time.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Quantity  int       `gorm:"not null"`
}
