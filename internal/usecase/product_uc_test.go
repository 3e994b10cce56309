package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velez/storefront/internal/adapters/cache"
	"github.com/velez/storefront/internal/domain"
)

func newProductFixture(t *testing.T) (*ProductUC, *fakeProductRepo) {
	t.Helper()
	products := newFakeProductRepo()
	uc := &ProductUC{Products: products, Search: cache.NewSearchCache(time.Minute)}
	return uc, products
}

func TestGroupVariantsMintsSharedGroup(t *testing.T) {
	uc, products := newProductFixture(t)
	ctx := context.Background()
	a := seedProduct(t, products, "Shirt Red", 20.0, 5)
	b := seedProduct(t, products, "Shirt Blue", 20.0, 5)

	group, err := uc.GroupVariants(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, group)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		p, err := products.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, p.VariantGroup)
		assert.Equal(t, group, *p.VariantGroup)
	}
}

func TestGroupVariantsReusesExistingGroup(t *testing.T) {
	uc, products := newProductFixture(t)
	ctx := context.Background()
	a := seedProduct(t, products, "Shirt Red", 20.0, 5)
	b := seedProduct(t, products, "Shirt Blue", 20.0, 5)
	c := seedProduct(t, products, "Shirt Green", 20.0, 5)

	group, err := uc.GroupVariants(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)

	// Grouping a member with a newcomer extends the existing group.
	got, err := uc.GroupVariants(ctx, []uuid.UUID{a.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, group, got)

	pc, err := products.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, pc.VariantGroup)
	assert.Equal(t, group, *pc.VariantGroup)
}

func TestGroupVariantsNeedsTwo(t *testing.T) {
	uc, products := newProductFixture(t)
	a := seedProduct(t, products, "Lone", 20.0, 5)
	_, err := uc.GroupVariants(context.Background(), []uuid.UUID{a.ID})
	assert.Error(t, err)
}

func TestSiblingsExcludeSelf(t *testing.T) {
	uc, products := newProductFixture(t)
	ctx := context.Background()
	a := seedProduct(t, products, "Shirt Red", 20.0, 5)
	b := seedProduct(t, products, "Shirt Blue", 20.0, 5)
	lone := seedProduct(t, products, "Mug", 12.0, 5)

	_, err := uc.GroupVariants(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)

	sibs, err := uc.Siblings(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, sibs, 1)
	assert.Equal(t, b.ID, sibs[0].ID)

	sibs, err = uc.Siblings(ctx, lone.ID)
	require.NoError(t, err)
	assert.Empty(t, sibs)
}

func TestUngroupVariant(t *testing.T) {
	uc, products := newProductFixture(t)
	ctx := context.Background()
	a := seedProduct(t, products, "Shirt Red", 20.0, 5)
	b := seedProduct(t, products, "Shirt Blue", 20.0, 5)

	_, err := uc.GroupVariants(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.NoError(t, uc.UngroupVariant(ctx, a.ID))

	pa, err := products.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, pa.VariantGroup)

	pb, err := products.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.NotNil(t, pb.VariantGroup, "other members keep the group")
}

func TestListSearchServedFromCache(t *testing.T) {
	uc, products := newProductFixture(t)
	ctx := context.Background()
	seedProduct(t, products, "Enamel Mug", 12.0, 5)

	f := domain.ProductFilter{Query: "mug", Page: 1, PageSize: 20}
	list, total, err := uc.List(ctx, f)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 1, products.listCalls)

	// New matching product inside the TTL window; repeated searches keep
	// serving the cached page and never reach the repo.
	seedProduct(t, products, "Travel Mug", 15.0, 5)
	list, total, err = uc.List(ctx, f)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 1, products.listCalls)
}

func TestListWithoutQueryBypassesCache(t *testing.T) {
	uc, products := newProductFixture(t)
	ctx := context.Background()
	seedProduct(t, products, "Enamel Mug", 12.0, 5)

	f := domain.ProductFilter{Page: 1}
	_, _, err := uc.List(ctx, f)
	require.NoError(t, err)
	_, _, err = uc.List(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 2, products.listCalls)
}

func TestGetBumpsViews(t *testing.T) {
	uc, products := newProductFixture(t)
	ctx := context.Background()
	p := seedProduct(t, products, "Mug", 12.0, 5)

	got, err := uc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	again, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Views)
}

func TestCreateValidates(t *testing.T) {
	uc, _ := newProductFixture(t)
	ctx := context.Background()

	assert.Error(t, uc.Create(ctx, &domain.Product{Title: "  "}))
	assert.Error(t, uc.Create(ctx, &domain.Product{Title: "Mug", Price: -1}))

	p := &domain.Product{Title: "Mug", Price: 12.0, Stock: 3}
	require.NoError(t, uc.Create(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ID)
}
