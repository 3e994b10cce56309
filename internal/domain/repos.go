package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error

	AddImages(ctx context.Context, productID uuid.UUID, imgs []ProductImage) error
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) (string, error)
	AddAttribute(ctx context.Context, attr *ProductAttribute) error
	DeleteAttribute(ctx context.Context, productID, attrID uuid.UUID) error

	SetVariantGroup(ctx context.Context, ids []uuid.UUID, group uuid.UUID) error
	ClearVariantGroup(ctx context.Context, id uuid.UUID) error
	ListByVariantGroup(ctx context.Context, group uuid.UUID) ([]Product, error)
}

type BasketRepo interface {
	FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*Basket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Basket, error)
	Save(ctx context.Context, b *Basket) error
	// Delete removes the basket row and all of its items.
	Delete(ctx context.Context, id uuid.UUID) error

	ItemFor(ctx context.Context, basketID, productID uuid.UUID) (*BasketItem, error)
	SaveItem(ctx context.Context, it *BasketItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, basketID uuid.UUID) ([]BasketItem, error)
}

type OrderRepo interface {
	Save(ctx context.Context, o *Order) error
	SaveItem(ctx context.Context, it *OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	List(ctx context.Context, page, pageSize int) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}

type UserRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, u *User) error
}

type SettingRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type FeaturedProductRepo interface {
	Save(ctx context.Context, productID uuid.UUID, order int) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetWithProducts(ctx context.Context) ([]Product, error)
}

// CheckoutLine is one purchasable row sent to the payment provider.
// UnitAmount is in minor currency units.
type CheckoutLine struct {
	Title       string
	Description string
	UnitAmount  int64
	Quantity    int
}

// CheckoutSession mirrors the provider's hosted session: an opaque id,
// the redirect URL, the payment status and the metadata echoed back.
type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	Metadata      map[string]string
}

type CheckoutGateway interface {
	CreateSession(ctx context.Context, lines []CheckoutLine, metadata map[string]string) (*CheckoutSession, error)
	GetSession(ctx context.Context, id string) (*CheckoutSession, error)
}
