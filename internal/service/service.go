package service

import (
	"context"

	"expired/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for product management.
type ProductService interface {
	// List returns the active products matching the filter, soonest expiry first.
	List(ctx context.Context, filter model.Filter) ([]model.Product, error)

	// GetByID retrieves a single product, archived or not.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create adds a new product.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// CreateMany adds all requests in one save, or none of them.
	CreateMany(ctx context.Context, reqs []model.ProductRequest) ([]model.Product, error)

	// Update edits the title, expiry date and memo of a product.
	Update(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	// Archive soft-deletes a product so it leaves the active list.
	Archive(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Delete removes a product permanently.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteAt removes the products at the given indexes of the filtered list.
	DeleteAt(ctx context.Context, filter model.Filter, indexes []int) error

	// ArchiveExpired archives products that expired more than olderThanDays days ago.
	ArchiveExpired(ctx context.Context, olderThanDays int) (int, error)

	// Count returns how many products are stored, archived ones included.
	Count(ctx context.Context) (int, error)

	// Summary counts active products per expiry bucket.
	Summary(ctx context.Context) model.Summary

	// Reload refreshes the active list from storage.
	Reload(ctx context.Context)
}
