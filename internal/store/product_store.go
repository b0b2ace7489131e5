// Package store keeps the in-memory list of active products in step with the
// persistence context.
package store

import (
	"context"
	"sync"

	"expired/internal/model"
	"expired/internal/repository"

	"github.com/rs/zerolog"
)

// ProductStore owns the active (non-archived) products, sorted by expiry date.
// The list is refreshed on creation and after every successful save.
type ProductStore struct {
	pc     repository.ProductContext
	logger zerolog.Logger

	// Held across fetch and publish so an older fetch cannot overwrite a newer one.
	reloadMu sync.Mutex

	mu       sync.RWMutex
	products []model.Product

	subMu       sync.Mutex
	subscribers map[int]func([]model.Product)
	nextSubID   int
}

// NewProductStore creates a store and loads the active products.
func NewProductStore(ctx context.Context, pc repository.ProductContext, logger zerolog.Logger) *ProductStore {
	s := &ProductStore{
		pc:          pc,
		logger:      logger.With().Str("store", "product").Logger(),
		products:    []model.Product{},
		subscribers: make(map[int]func([]model.Product)),
	}
	s.Reload(ctx)
	return s
}

// Context returns the persistence context the store reads from.
func (s *ProductStore) Context() repository.ProductContext {
	return s.pc
}

// Products returns a copy of the current active list.
func (s *ProductStore) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Fetch queries the active products. Failures are logged and yield an empty list.
func (s *ProductStore) Fetch(ctx context.Context) []model.Product {
	products, err := s.pc.Fetch(ctx, repository.ActiveProductsRequest())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch products")
		return []model.Product{}
	}
	return products
}

// Reload re-runs Fetch and publishes the result. Reloads run one at a time.
// Subscribers must not call Reload or Save.
func (s *ProductStore) Reload(ctx context.Context) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	products := s.Fetch(ctx)

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(products)).Msg("products reloaded")

	s.publish(products)
}

// Save persists pending changes and reloads. Without pending changes it does nothing.
// A failed save is logged, the current list is kept, and the error is returned.
func (s *ProductStore) Save(ctx context.Context) error {
	if !s.pc.HasChanges() {
		return nil
	}

	if err := s.pc.Save(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to save products")
		return err
	}

	s.Reload(ctx)
	return nil
}

// Subscribe registers fn to receive the list after every reload.
// The returned function removes the subscription.
func (s *ProductStore) Subscribe(fn func([]model.Product)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *ProductStore) publish(products []model.Product) {
	s.subMu.Lock()
	fns := make([]func([]model.Product), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		snapshot := make([]model.Product, len(products))
		copy(snapshot, products)
		fn(snapshot)
	}
}
