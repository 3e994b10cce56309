package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/velez/storefront/internal/domain"
)

// In-memory repo fakes. FindByID hands out copies so mutations only take
// effect through Save, matching the read-then-write behavior of the real
// repos.

type fakeProductRepo struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*domain.Product
	listCalls int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uuid.UUID]*domain.Product{}}
}

func (r *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var list []domain.Product
	for _, p := range r.products {
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Query)) {
			continue
		}
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	return list, int64(len(list)), nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	paths := []string{}
	for _, im := range p.Images {
		paths = append(paths, im.ImagePath)
	}
	delete(r.products, id)
	return paths, nil
}

func (r *fakeProductRepo) IncrementViews(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Views++
	return nil
}

func (r *fakeProductRepo) AddImages(_ context.Context, productID uuid.UUID, imgs []domain.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Images = append(p.Images, imgs...)
	return nil
}

func (r *fakeProductRepo) DeleteImage(_ context.Context, productID, imageID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return "", domain.ErrNotFound
	}
	for i, im := range p.Images {
		if im.ID == imageID {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return im.ImagePath, nil
		}
	}
	return "", domain.ErrNotFound
}

func (r *fakeProductRepo) AddAttribute(_ context.Context, attr *domain.ProductAttribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[attr.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Attributes = append(p.Attributes, *attr)
	return nil
}

func (r *fakeProductRepo) DeleteAttribute(_ context.Context, productID, attrID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	for i, a := range p.Attributes {
		if a.ID == attrID {
			p.Attributes = append(p.Attributes[:i], p.Attributes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeProductRepo) SetVariantGroup(_ context.Context, ids []uuid.UUID, group uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			g := group
			p.VariantGroup = &g
		}
	}
	return nil
}

func (r *fakeProductRepo) ClearVariantGroup(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.VariantGroup = nil
	return nil
}

func (r *fakeProductRepo) ListByVariantGroup(_ context.Context, group uuid.UUID) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []domain.Product
	for _, p := range r.products {
		if p.VariantGroup != nil && *p.VariantGroup == group {
			list = append(list, *p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	return list, nil
}

type fakeBasketRepo struct {
	mu      sync.Mutex
	baskets map[uuid.UUID]*domain.Basket
	items   map[uuid.UUID]*domain.BasketItem
	seq     int
}

func newFakeBasketRepo() *fakeBasketRepo {
	return &fakeBasketRepo{baskets: map[uuid.UUID]*domain.Basket{}, items: map[uuid.UUID]*domain.BasketItem{}}
}

func (r *fakeBasketRepo) FindOrCreateByUser(_ context.Context, userID uuid.UUID) (*domain.Basket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.baskets {
		if b.UserID == userID {
			cp := *b
			return &cp, nil
		}
	}
	b := &domain.Basket{ID: uuid.New(), UserID: userID}
	r.baskets[b.ID] = b
	cp := *b
	return &cp, nil
}

func (r *fakeBasketRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Basket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.baskets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBasketRepo) Save(_ context.Context, b *domain.Basket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.baskets[b.ID] = &cp
	return nil
}

func (r *fakeBasketRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for itemID, it := range r.items {
		if it.BasketID == id {
			delete(r.items, itemID)
		}
	}
	delete(r.baskets, id)
	return nil
}

func (r *fakeBasketRepo) ItemFor(_ context.Context, basketID, productID uuid.UUID) (*domain.BasketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.BasketID == basketID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeBasketRepo) SaveItem(_ context.Context, it *domain.BasketItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	r.seq++
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *fakeBasketRepo) DeleteItem(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *fakeBasketRepo) ListItems(_ context.Context, basketID uuid.UUID) ([]domain.BasketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []domain.BasketItem
	for _, it := range r.items {
		if it.BasketID == basketID {
			list = append(list, *it)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
	items  map[uuid.UUID]*domain.OrderItem
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{}, items: map[uuid.UUID]*domain.OrderItem{}}
}

func (r *fakeOrderRepo) Save(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	cp.Items = nil
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) SaveItem(_ context.Context, it *domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	cp := *it
	r.items[it.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	for _, it := range r.items {
		if it.OrderID == id {
			cp.Items = append(cp.Items, *it)
		}
	}
	return &cp, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			list = append(list, *o)
		}
	}
	return list, nil
}

func (r *fakeOrderRepo) List(_ context.Context, page, pageSize int) ([]domain.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []domain.Order
	for _, o := range r.orders {
		list = append(list, *o)
	}
	return list, int64(len(list)), nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	sessions map[string]*domain.CheckoutSession
	created  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*domain.CheckoutSession{}}
}

func (g *fakeGateway) CreateSession(_ context.Context, lines []domain.CheckoutLine, metadata map[string]string) (*domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created++
	sess := &domain.CheckoutSession{
		ID:            uuid.New().String(),
		URL:           "https://pay.example/" + metadata["basket_id"],
		PaymentStatus: "unpaid",
		Metadata:      metadata,
	}
	g.sessions[sess.ID] = sess
	return sess, nil
}

func (g *fakeGateway) GetSession(_ context.Context, id string) (*domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

func (g *fakeGateway) markPaid(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sess, ok := g.sessions[id]; ok {
		sess.PaymentStatus = "paid"
	}
}
