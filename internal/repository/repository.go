package repository

import (
	"context"
	"fmt"

	"expired/internal/model"

	"github.com/google/uuid"
)

// ProductContext is the persistence context products are read from and written through.
// Mutations are registered as pending changes and only reach storage on Save.
type ProductContext interface {
	// Fetch runs a query against saved state. Pending changes are not visible.
	Fetch(ctx context.Context, req FetchRequest) ([]model.Product, error)

	// Get retrieves a single saved product, archived or not. Returns nil if absent.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Insert registers a new product. A missing ID and timestamps are filled in.
	// Inserting a product whose delete is still pending restores it instead.
	Insert(p *model.Product)

	// Update registers an edit of an existing product.
	Update(p *model.Product)

	// Delete registers removal of a product.
	Delete(p model.Product)

	// HasChanges reports whether any change is pending.
	HasChanges() bool

	// Save persists all pending changes atomically. On failure the changes stay pending.
	Save(ctx context.Context) error

	// Rollback discards all pending changes.
	Rollback()
}

// Sortable product fields.
const (
	SortByExpiryDate = "expiry_date"
	SortByTitle      = "title"
	SortByCreatedAt  = "created_at"
)

// SortDescriptor orders fetch results by one field.
type SortDescriptor struct {
	Field     string
	Ascending bool
}

// FetchRequest describes a product query.
type FetchRequest struct {
	IncludeArchived bool
	SortBy          []SortDescriptor
}

// ActiveProductsRequest selects non-archived products by expiry date, soonest first.
func ActiveProductsRequest() FetchRequest {
	return FetchRequest{
		IncludeArchived: false,
		SortBy:          []SortDescriptor{{Field: SortByExpiryDate, Ascending: true}},
	}
}

// Validate rejects sort fields outside the whitelist.
func (r FetchRequest) Validate() error {
	for _, s := range r.SortBy {
		switch s.Field {
		case SortByExpiryDate, SortByTitle, SortByCreatedAt:
		default:
			return fmt.Errorf("unsupported sort field: %q", s.Field)
		}
	}
	return nil
}
