package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velez/storefront/internal/domain"
)

func newBasketFixture(t *testing.T) (*BasketUC, *fakeProductRepo, *fakeBasketRepo, *fakeGateway) {
	t.Helper()
	products := newFakeProductRepo()
	baskets := newFakeBasketRepo()
	gateway := newFakeGateway()
	pay := &PaymentUC{Baskets: baskets, Products: products, Gateway: gateway}
	uc := &BasketUC{Baskets: baskets, Products: products, Payments: pay}
	return uc, products, baskets, gateway
}

func seedProduct(t *testing.T, repo *fakeProductRepo, title string, price float64, stock int) *domain.Product {
	t.Helper()
	p := &domain.Product{ID: uuid.New(), Title: title, Price: price, Stock: stock}
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestBasketAddRejectsWhenStockExhausted(t *testing.T) {
	uc, products, _, _ := newBasketFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, products, "Mug", 12.0, 2)

	_, _, err := uc.Apply(ctx, userID, p.ID, domain.BasketActionAdd)
	require.NoError(t, err)
	_, _, err = uc.Apply(ctx, userID, p.ID, domain.BasketActionAdd)
	require.NoError(t, err)

	// Basket quantity now equals stock; the next add must be rejected.
	_, _, err = uc.Apply(ctx, userID, p.ID, domain.BasketActionAdd)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestBasketAddRejectsZeroStockProduct(t *testing.T) {
	uc, products, _, _ := newBasketFixture(t)
	p := seedProduct(t, products, "Sold Out", 5.0, 0)

	_, _, err := uc.Apply(context.Background(), uuid.New(), p.ID, domain.BasketActionAdd)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestBasketAddUnknownProduct(t *testing.T) {
	uc, _, _, _ := newBasketFixture(t)
	_, _, err := uc.Apply(context.Background(), uuid.New(), uuid.New(), domain.BasketActionAdd)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBasketRemoveLastUnitDeletesRow(t *testing.T) {
	uc, products, baskets, _ := newBasketFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, products, "Tote", 18.5, 10)

	b, lines, err := uc.Apply(ctx, userID, p.ID, domain.BasketActionAdd)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	_, lines, err = uc.Apply(ctx, userID, p.ID, domain.BasketActionRemove)
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = baskets.ItemFor(ctx, b.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBasketRemoveAbsentItem(t *testing.T) {
	uc, products, _, _ := newBasketFixture(t)
	p := seedProduct(t, products, "Tote", 18.5, 10)

	_, _, err := uc.Apply(context.Background(), uuid.New(), p.ID, domain.BasketActionRemove)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBasketMutationRefreshesCheckoutSession(t *testing.T) {
	uc, products, _, gateway := newBasketFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, products, "Mug", 12.0, 5)

	b, _, err := uc.Apply(ctx, userID, p.ID, domain.BasketActionAdd)
	require.NoError(t, err)
	assert.NotEmpty(t, b.StripeCheckout)
	assert.Equal(t, 1, gateway.created)

	// A second mutation drops the cached URL and creates a fresh session.
	b, _, err = uc.Apply(ctx, userID, p.ID, domain.BasketActionAdd)
	require.NoError(t, err)
	assert.NotEmpty(t, b.StripeCheckout)
	assert.Equal(t, 2, gateway.created)
}

func TestBasketEmptyAfterRemoveHasNoSession(t *testing.T) {
	uc, products, _, gateway := newBasketFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	p := seedProduct(t, products, "Mug", 12.0, 5)

	_, _, err := uc.Apply(ctx, userID, p.ID, domain.BasketActionAdd)
	require.NoError(t, err)
	created := gateway.created

	b, _, err := uc.Apply(ctx, userID, p.ID, domain.BasketActionRemove)
	require.NoError(t, err)
	assert.Empty(t, b.StripeCheckout)
	assert.Equal(t, created, gateway.created)
}

func TestBasketGetCreatesLazily(t *testing.T) {
	uc, _, _, _ := newBasketFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	b1, lines, err := uc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	b2, _, err := uc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, b1.ID, b2.ID, "one live basket per user")
}
