// Package listview holds the state behind the product list screen: the selected
// expiry filter, the delete confirmation, and the memo popover.
package listview

import (
	"context"
	"slices"

	"expired/internal/model"
	"expired/internal/repository"
	"expired/internal/store"

	"github.com/rs/zerolog"
)

// EmptyMessage is shown when the filtered list has no products.
const EmptyMessage = "No product found\nPress + to add your first product!"

// DeletePrompt is the confirmation question for a pending delete.
const DeletePrompt = "Are you sure you want to delete this product?"

// View is the view-model of the product list. It is not safe for concurrent use;
// each screen or request owns its own View over a shared store.
type View struct {
	store  *store.ProductStore
	pc     repository.ProductContext
	policy model.ExpiryPolicy
	logger zerolog.Logger

	selected model.Filter

	showingDeleteAlert bool
	deleteIndexes      []int

	showingMemo bool
	memoProduct *model.Product
}

// New creates a view over the store with the All filter selected.
func New(s *store.ProductStore, policy model.ExpiryPolicy, logger zerolog.Logger) *View {
	return &View{
		store:    s,
		pc:       s.Context(),
		policy:   policy,
		logger:   logger.With().Str("view", "product-list").Logger(),
		selected: model.FilterAll,
	}
}

// Policy returns the expiry policy used for filtering.
func (v *View) Policy() model.ExpiryPolicy {
	return v.policy
}

// SelectFilter changes the selected filter.
func (v *View) SelectFilter(f model.Filter) {
	v.selected = f
}

// Filter returns the selected filter.
func (v *View) Filter() model.Filter {
	return v.selected
}

// Filtered derives the visible products from the store for the selected filter.
func (v *View) Filtered() []model.Product {
	return model.ApplyFilter(v.store.Products(), v.selected, v.policy)
}

// IsEmpty reports whether the empty-state message should be shown.
func (v *View) IsEmpty() bool {
	return len(v.Filtered()) == 0
}

// RequestDelete captures the index set and raises the confirmation prompt.
func (v *View) RequestDelete(indexes []int) {
	v.deleteIndexes = slices.Clone(indexes)
	v.showingDeleteAlert = true
}

// ShowingDeleteAlert reports whether a delete is awaiting confirmation.
func (v *View) ShowingDeleteAlert() bool {
	return v.showingDeleteAlert
}

// PendingDelete returns the captured index set.
func (v *View) PendingDelete() []int {
	return slices.Clone(v.deleteIndexes)
}

// CancelDelete dismisses the prompt and forgets the index set.
func (v *View) CancelDelete() {
	v.deleteIndexes = nil
	v.showingDeleteAlert = false
}

// ConfirmDelete deletes the products at the captured indexes of the filtered list
// and saves through the store. The prompt is dismissed whatever the outcome.
func (v *View) ConfirmDelete(ctx context.Context) error {
	if !v.showingDeleteAlert || v.deleteIndexes == nil {
		return model.ErrNoPendingDelete
	}
	indexes := v.deleteIndexes
	v.CancelDelete()

	return v.deleteAt(ctx, indexes)
}

func (v *View) deleteAt(ctx context.Context, indexes []int) error {
	filtered := v.Filtered()

	targets := make([]model.Product, 0, len(indexes))
	seen := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(filtered) {
			v.logger.Warn().
				Int("index", i).
				Int("filtered", len(filtered)).
				Msg("delete index out of range")
			return model.ErrInvalidIndex
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		targets = append(targets, filtered[i])
	}

	for _, p := range targets {
		v.pc.Delete(p)
	}

	v.logger.Info().
		Int("count", len(targets)).
		Str("filter", string(v.selected)).
		Msg("deleting products")

	return v.store.Save(ctx)
}

// ShowMemo opens the memo popover for the product at index of the filtered list.
func (v *View) ShowMemo(index int) error {
	filtered := v.Filtered()
	if index < 0 || index >= len(filtered) {
		return model.ErrInvalidIndex
	}
	p := filtered[index]
	v.memoProduct = &p
	v.showingMemo = true
	return nil
}

// HideMemo closes the memo popover.
func (v *View) HideMemo() {
	v.showingMemo = false
	v.memoProduct = nil
}

// ShowingMemo reports whether the memo popover is open.
func (v *View) ShowingMemo() bool {
	return v.showingMemo
}

// MemoProduct returns the product whose memo is shown, or nil.
func (v *View) MemoProduct() *model.Product {
	return v.memoProduct
}
