package domain

import (
	"time"

	"github.com/google/uuid"
)

type Basket struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	// StripeCheckout caches the hosted session URL until the next mutation.
	StripeCheckout string `gorm:"size:500"`
	Items          []BasketItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type BasketItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BasketID  uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Quantity  int       `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BasketAction string

const (
	BasketActionAdd    BasketAction = "add"
	BasketActionRemove BasketAction = "remove"
)
