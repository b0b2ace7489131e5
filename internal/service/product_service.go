package service

import (
	"context"
	"fmt"
	"sync"

	"expired/internal/listview"
	"expired/internal/model"
	"expired/internal/repository"
	"expired/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService on top of the shared ProductStore.
type productService struct {
	store  *store.ProductStore
	pc     repository.ProductContext
	policy model.ExpiryPolicy
	logger zerolog.Logger

	// Serialises register-then-save sequences on the shared context.
	mu sync.Mutex
}

// NewProductService creates a new product service.
func NewProductService(s *store.ProductStore, policy model.ExpiryPolicy, logger zerolog.Logger) ProductService {
	return &productService{
		store:  s,
		pc:     s.Context(),
		policy: policy,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// List returns the active products matching the filter.
func (s *productService) List(ctx context.Context, filter model.Filter) ([]model.Product, error) {
	products := model.ApplyFilter(s.store.Products(), filter, s.policy)

	s.logger.Debug().
		Str("filter", string(filter)).
		Int("count", len(products)).
		Msg("listed products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.pc.Get(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create adds a new product.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.ErrMissingTitle
	}
	expiry, err := req.Validate()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product := &model.Product{
		Title:      req.Title,
		ExpiryDate: expiry,
		Memo:       req.Memo,
	}
	s.pc.Insert(product)

	if err := s.save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("title", product.Title).
		Msg("product created")

	return product, nil
}

// CreateMany validates every request, then inserts them all in a single save.
// Nothing is registered when any request is invalid.
func (s *productService) CreateMany(ctx context.Context, reqs []model.ProductRequest) ([]model.Product, error) {
	if len(reqs) == 0 {
		return []model.Product{}, nil
	}

	products := make([]model.Product, len(reqs))
	for i := range reqs {
		expiry, err := reqs[i].Validate()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		products[i] = model.Product{
			Title:      reqs[i].Title,
			ExpiryDate: expiry,
			Memo:       reqs[i].Memo,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range products {
		s.pc.Insert(&products[i])
	}

	if err := s.save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().Int("count", len(products)).Msg("products created")

	return products, nil
}

// Update edits an existing product.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.ErrMissingTitle
	}
	expiry, err := req.Validate()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Title = req.Title
	product.ExpiryDate = expiry
	product.Memo = req.Memo
	s.pc.Update(product)

	if err := s.save(ctx); err != nil {
		return nil, err
	}

	return product, nil
}

// Archive soft-deletes a product.
func (s *productService) Archive(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if product.Archived {
		return product, nil
	}

	product.SetArchived()
	s.pc.Update(product)

	if err := s.save(ctx); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product archived")

	return product, nil
}

// Delete removes a product permanently.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.pc.Delete(*product)

	return s.save(ctx)
}

// DeleteAt removes products by their position in the filtered list.
func (s *productService) DeleteAt(ctx context.Context, filter model.Filter, indexes []int) error {
	if len(indexes) == 0 {
		return model.ErrMissingIndexes
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	view := listview.New(s.store, s.policy, s.logger)
	view.SelectFilter(filter)
	view.RequestDelete(indexes)

	if err := view.ConfirmDelete(ctx); err != nil {
		if s.pc.HasChanges() {
			s.pc.Rollback()
		}
		return err
	}

	return nil
}

// ArchiveExpired archives products whose expiry day is more than olderThanDays in the past.
func (s *productService) ArchiveExpired(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		olderThanDays = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.policy.CurrentTime()

	archived := 0
	for _, p := range s.store.Products() {
		if p.DaysLeft(today) >= -olderThanDays {
			// The list is sorted by expiry date, so nothing later qualifies.
			break
		}
		p.SetArchived()
		s.pc.Update(&p)
		archived++
	}

	if archived == 0 {
		return 0, nil
	}

	if err := s.save(ctx); err != nil {
		return 0, err
	}

	s.logger.Info().
		Int("count", archived).
		Int("older_than_days", olderThanDays).
		Msg("archived long-expired products")

	return archived, nil
}

// Count returns how many products are stored, archived ones included.
func (s *productService) Count(ctx context.Context) (int, error) {
	products, err := s.pc.Fetch(ctx, repository.FetchRequest{IncludeArchived: true})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to count products")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return len(products), nil
}

// Summary counts active products per expiry bucket.
func (s *productService) Summary(ctx context.Context) model.Summary {
	return s.policy.Summarize(s.store.Products())
}

// Reload refreshes the active list from storage. It waits for any write in progress.
func (s *productService) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Reload(ctx)
}

// save persists pending changes. Failed changes are discarded so they cannot
// leak into the next caller's save.
func (s *productService) save(ctx context.Context) error {
	if err := s.store.Save(ctx); err != nil {
		s.pc.Rollback()
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}
