package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"expired/internal/model"
	"expired/internal/repository"
	"expired/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testPolicy() model.ExpiryPolicy {
	return model.ExpiryPolicy{SoonDays: 7, Now: func() time.Time { return testNow }}
}

func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format(time.RFC3339)
}

func setupService(t *testing.T) (ProductService, *repository.MemoryContext) {
	t.Helper()

	pc := repository.NewMemoryContext()
	s := store.NewProductStore(context.Background(), pc, zerolog.Nop())
	return NewProductService(s, testPolicy(), zerolog.Nop()), pc
}

func seed(t *testing.T, svc ProductService, offsets ...int) []*model.Product {
	t.Helper()

	var out []*model.Product
	for i, offset := range offsets {
		p, err := svc.Create(context.Background(), &model.ProductRequest{
			Title:      string(rune('A' + i)),
			ExpiryDate: day(offset),
		})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func titles(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		req         *model.ProductRequest
		expectedErr error
	}{
		{
			name: "Success",
			req:  &model.ProductRequest{Title: "Milk", ExpiryDate: "2026-03-12", Memo: "2L"},
		},
		{
			name:        "Missing title",
			req:         &model.ProductRequest{ExpiryDate: "2026-03-12"},
			expectedErr: model.ErrMissingTitle,
		},
		{
			name:        "Missing expiry date",
			req:         &model.ProductRequest{Title: "Milk"},
			expectedErr: model.ErrMissingExpiryDate,
		},
		{
			name:        "Invalid date",
			req:         &model.ProductRequest{Title: "Milk", ExpiryDate: "soon"},
			expectedErr: model.ErrInvalidDate,
		},
		{
			name:        "Nil request",
			req:         nil,
			expectedErr: model.ErrMissingTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, pc := setupService(t)

			product, err := svc.Create(ctx, tt.req)

			if tt.expectedErr != nil {
				assert.Equal(t, tt.expectedErr, err)
				assert.Nil(t, product)
				assert.False(t, pc.HasChanges())
				return
			}

			require.NoError(t, err)
			require.NotNil(t, product)
			assert.NotEqual(t, uuid.Nil, product.ID)
			assert.Equal(t, "Milk", product.Title)
			assert.Equal(t, "2L", product.Memo)
			assert.False(t, pc.HasChanges())

			products, err := svc.List(ctx, model.FilterAll)
			require.NoError(t, err)
			assert.Equal(t, []string{"Milk"}, titles(products))
		})
	}
}

func TestProductService_CreateMany(t *testing.T) {
	ctx := context.Background()

	t.Run("All valid", func(t *testing.T) {
		svc, pc := setupService(t)

		created, err := svc.CreateMany(ctx, []model.ProductRequest{
			{Title: "Milk", ExpiryDate: day(2)},
			{Title: "Rice", ExpiryDate: day(90), Memo: "pantry"},
		})
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.NotEqual(t, uuid.Nil, created[0].ID)
		assert.False(t, pc.HasChanges())

		products, err := svc.List(ctx, model.FilterAll)
		require.NoError(t, err)
		assert.Equal(t, []string{"Milk", "Rice"}, titles(products))
	})

	t.Run("One invalid record registers nothing", func(t *testing.T) {
		svc, pc := setupService(t)

		_, err := svc.CreateMany(ctx, []model.ProductRequest{
			{Title: "Milk", ExpiryDate: day(2)},
			{Title: "", ExpiryDate: day(3)},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrMissingTitle)
		assert.Contains(t, err.Error(), "record 2")
		assert.False(t, pc.HasChanges())
		assert.Equal(t, 0, svc.Summary(ctx).Total)
	})

	t.Run("Empty input", func(t *testing.T) {
		svc, _ := setupService(t)

		created, err := svc.CreateMany(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, created)
	})
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc, 30, -2, 3)

	tests := []struct {
		filter   model.Filter
		expected []string
	}{
		{filter: model.FilterAll, expected: []string{"B", "C", "A"}},
		{filter: model.FilterExpired, expected: []string{"B"}},
		{filter: model.FilterExpiringSoon, expected: []string{"C"}},
		{filter: model.FilterGood, expected: []string{"A"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			products, err := svc.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, titles(products))
		})
	}
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	created := seed(t, svc, 1)

	product, err := svc.GetByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "A", product.Title)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.Equal(t, model.ErrProductNotFound, err)
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	created := seed(t, svc, 1, 5)

	updated, err := svc.Update(ctx, created[0].ID, &model.ProductRequest{
		Title:      "Renamed",
		ExpiryDate: day(10),
		Memo:       "moved to freezer",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	products, err := svc.List(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "Renamed"}, titles(products))

	_, err = svc.Update(ctx, uuid.New(), &model.ProductRequest{Title: "X", ExpiryDate: day(1)})
	assert.Equal(t, model.ErrProductNotFound, err)

	_, err = svc.Update(ctx, created[1].ID, &model.ProductRequest{Title: "X"})
	assert.Equal(t, model.ErrMissingExpiryDate, err)
}

func TestProductService_Archive(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	created := seed(t, svc, 1, 5)

	archived, err := svc.Archive(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	products, err := svc.List(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, titles(products))

	// Archived products are still reachable by ID.
	product, err := svc.GetByID(ctx, created[0].ID)
	require.NoError(t, err)
	assert.True(t, product.Archived)

	// Archiving twice is a no-op.
	_, err = svc.Archive(ctx, created[0].ID)
	assert.NoError(t, err)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	created := seed(t, svc, 1, 5)

	require.NoError(t, svc.Delete(ctx, created[1].ID))

	_, err := svc.GetByID(ctx, created[1].ID)
	assert.Equal(t, model.ErrProductNotFound, err)

	assert.Equal(t, model.ErrProductNotFound, svc.Delete(ctx, created[1].ID))
}

func TestProductService_DeleteAt(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes filtered items", func(t *testing.T) {
		svc, _ := setupService(t)
		seed(t, svc, -5, -1, 2, 40)

		require.NoError(t, svc.DeleteAt(ctx, model.FilterExpired, []int{1}))

		products, err := svc.List(ctx, model.FilterAll)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C", "D"}, titles(products))
	})

	t.Run("Invalid index leaves nothing pending", func(t *testing.T) {
		svc, pc := setupService(t)
		seed(t, svc, -5, 40)

		err := svc.DeleteAt(ctx, model.FilterGood, []int{3})
		assert.ErrorIs(t, err, model.ErrInvalidIndex)
		assert.False(t, pc.HasChanges())

		products, err := svc.List(ctx, model.FilterAll)
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	for _, indexes := range [][]int{nil, {}} {
		t.Run(fmt.Sprintf("Empty index set %v is a missing field", indexes), func(t *testing.T) {
			svc, _ := setupService(t)
			seed(t, svc, -5, 40)

			err := svc.DeleteAt(ctx, model.FilterAll, indexes)
			assert.ErrorIs(t, err, model.ErrMissingIndexes)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.ErrCodeMissingField, domainErr.Code)
			assert.Equal(t, 2, svc.Summary(ctx).Total)
		})
	}
}

func TestProductService_ArchiveExpired(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc, -30, -8, -7, -1, 3)

	count, err := svc.ArchiveExpired(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	products, err := svc.List(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D", "E"}, titles(products))

	count, err = svc.ArchiveExpired(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProductService_Summary(t *testing.T) {
	svc, _ := setupService(t)
	seed(t, svc, -3, -1, 0, 6, 8, 100)

	assert.Equal(t, model.Summary{Total: 6, Expired: 2, ExpiringSoon: 2, Good: 2}, svc.Summary(context.Background()))
}

// MockProductContext is a mock implementation of repository.ProductContext.
type MockProductContext struct {
	mock.Mock
}

func (m *MockProductContext) Fetch(ctx context.Context, req repository.FetchRequest) ([]model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductContext) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductContext) Insert(p *model.Product) { m.Called(p) }
func (m *MockProductContext) Update(p *model.Product) { m.Called(p) }
func (m *MockProductContext) Delete(p model.Product)  { m.Called(p) }
func (m *MockProductContext) Rollback()               { m.Called() }

func (m *MockProductContext) HasChanges() bool {
	return m.Called().Bool(0)
}

func (m *MockProductContext) Save(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestProductService_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()

	pc := new(MockProductContext)
	pc.On("Fetch", ctx, mock.Anything).Return([]model.Product{}, nil).Once()
	pc.On("Insert", mock.AnythingOfType("*model.Product")).Once()
	pc.On("HasChanges").Return(true).Once()
	pc.On("Save", ctx).Return(errors.New("connection reset")).Once()
	pc.On("Rollback").Once()

	s := store.NewProductStore(ctx, pc, zerolog.Nop())
	svc := NewProductService(s, testPolicy(), zerolog.Nop())

	product, err := svc.Create(ctx, &model.ProductRequest{Title: "Milk", ExpiryDate: "2026-03-12"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save products")
	assert.Nil(t, product)
	pc.AssertExpectations(t)
	pc.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestProductService_GetByIDError(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	pc := new(MockProductContext)
	pc.On("Fetch", ctx, mock.Anything).Return([]model.Product{}, nil)
	pc.On("Get", ctx, id).Return(nil, errors.New("database error"))

	s := store.NewProductStore(ctx, pc, zerolog.Nop())
	svc := NewProductService(s, testPolicy(), zerolog.Nop())

	_, err := svc.GetByID(ctx, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get product")
}

func TestProductService_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	svc, pc := setupService(t)

	const workers = 20
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, &model.ProductRequest{
				Title:      fmt.Sprintf("Item %02d", i),
				ExpiryDate: day(i - 5),
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			svc.Reload(ctx)
			_ = svc.Summary(ctx)
		}()
	}
	wg.Wait()

	assert.False(t, pc.HasChanges())

	products, err := svc.List(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Len(t, products, workers)
	assert.Equal(t, workers, svc.Summary(ctx).Total)
}

func TestProductService_DeleteAtAgainstConcurrentReload(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	seed(t, svc, -3, -2, -1, 1, 2, 3)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			// Index 0 of Expired is always the oldest remaining expired product.
			assert.NoError(t, svc.DeleteAt(ctx, model.FilterExpired, []int{0}))
		}()
		go func() {
			defer wg.Done()
			svc.Reload(ctx)
		}()
	}
	wg.Wait()

	expired, err := svc.List(ctx, model.FilterExpired)
	require.NoError(t, err)
	assert.Empty(t, expired)

	all, err := svc.List(ctx, model.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductService_Count(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	products := seed(t, svc, -1, 4)
	_, err = svc.Archive(ctx, products[0].ID)
	require.NoError(t, err)

	count, err = svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, svc.Summary(ctx).Total)
}
