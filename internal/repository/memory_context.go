package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"expired/internal/model"

	"github.com/google/uuid"
)

// MemoryContext is an in-process ProductContext. Saved state lives in a map.
type MemoryContext struct {
	mu       sync.Mutex
	products map[uuid.UUID]model.Product
	pending  *changeSet
}

// NewMemoryContext creates an empty in-memory persistence context.
func NewMemoryContext() *MemoryContext {
	return &MemoryContext{
		products: make(map[uuid.UUID]model.Product),
		pending:  newChangeSet(),
	}
}

func (m *MemoryContext) Fetch(ctx context.Context, req FetchRequest) ([]model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	products := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Archived && !req.IncludeArchived {
			continue
		}
		products = append(products, p)
	}
	m.mu.Unlock()

	// Map iteration is random, so settle on id order before the requested sort.
	slices.SortFunc(products, func(a, b model.Product) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	slices.SortStableFunc(products, func(a, b model.Product) int {
		for _, s := range req.SortBy {
			c := compareField(a, b, s.Field)
			if !s.Ascending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	return products, nil
}

func compareField(a, b model.Product, field string) int {
	switch field {
	case SortByExpiryDate:
		return a.ExpiryDate.Compare(b.ExpiryDate)
	case SortByTitle:
		return cmp.Compare(a.Title, b.Title)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func (m *MemoryContext) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryContext) Insert(p *model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.insert(p)
}

func (m *MemoryContext) Update(p *model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.update(p)
}

func (m *MemoryContext) Delete(p model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.delete(p)
}

func (m *MemoryContext) HasChanges() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.pending.empty()
}

func (m *MemoryContext) Rollback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.reset()
}

func (m *MemoryContext) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.pending.list() {
		switch c.kind {
		case changeInsert:
			m.products[c.product.ID] = c.product
		case changeUpdate:
			if _, ok := m.products[c.product.ID]; ok {
				m.products[c.product.ID] = c.product
			}
		case changeDelete:
			delete(m.products, c.product.ID)
		}
	}
	m.pending.reset()

	return nil
}
