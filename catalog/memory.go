package catalog

import (
	"context"
	"sort"
	"sync"

	"dukaan/identity"
	"dukaan/models"
)

// MemoryStore is an in-process Store for tests and local seeding.
type MemoryStore struct {
	mu       sync.RWMutex
	shops    map[identity.ID]models.Shop
	products map[identity.ID]models.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shops:    make(map[identity.ID]models.Shop),
		products: make(map[identity.ID]models.Product),
	}
}

func (m *MemoryStore) Shop(_ context.Context, id string) (*models.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shops[identity.Parse(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Product(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[identity.Parse(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) Shops(_ context.Context) ([]models.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Shop, 0, len(m.shops))
	for _, s := range m.shops {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ShopsByIDs(_ context.Context, ids []identity.ID) ([]models.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Shop, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.shops[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) ProductsByShop(_ context.Context, shopID identity.ID) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Product{}
	for _, p := range m.products {
		if p.ShopID == shopID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ProductsByIDs(_ context.Context, ids []identity.ID) (map[identity.ID]*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[identity.ID]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateShop(_ context.Context, shop *models.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shop.ID.IsZero() {
		shop.ID = identity.New()
	}
	m.shops[shop.ID] = *shop
	return nil
}

func (m *MemoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = identity.New()
	}
	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	m.products[product.ID] = *product
	return nil
}

// SetPrice changes a product's base price in place.
func (m *MemoryStore) SetPrice(id identity.ID, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.Price = price
		m.products[id] = p
	}
}
