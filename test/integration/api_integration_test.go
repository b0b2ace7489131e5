package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expired/internal/handler"
	"expired/internal/model"
	"expired/internal/repository"
	"expired/internal/router"
	"expired/internal/service"
	"expired/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	productContext := repository.NewProductContext(testDB.Pool, logger)
	productStore := store.NewProductStore(ctx, productContext, logger)
	productService := service.NewProductService(productStore, model.DefaultExpiryPolicy(), logger)
	productHandler := handler.NewProductHandler(productService, logger)

	return router.New(productHandler, testAPIKey, logger)
}

func call(t *testing.T, server http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()

	server.ServeHTTP(w, req)
	return w
}

// reseed replaces the table contents and reloads the server's cached list.
func reseed(t *testing.T, testDB *TestDB, server http.Handler) {
	t.Helper()

	CleanupDB(t, testDB.Pool)
	SeedProducts(t, testDB.Pool, DefaultSeed)
	require.Equal(t, http.StatusOK, call(t, server, http.MethodPost, "/api/products/reload", nil).Code)
}

func decodeProducts(t *testing.T, w *httptest.ResponseRecorder) []model.Product {
	t.Helper()

	var products []model.Product
	require.NoError(t, json.NewDecoder(w.Body).Decode(&products))
	return products
}

func productTitles(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestProductAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("GET /api/products returns active products soonest first", func(t *testing.T) {
		reseed(t, testDB, server)

		w := call(t, server, http.MethodGet, "/api/products", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Milk", "Bread", "Eggs", "Rice"}, productTitles(decodeProducts(t, w)))
	})

	t.Run("GET /api/products filters by bucket", func(t *testing.T) {
		reseed(t, testDB, server)

		tests := []struct {
			filter   string
			expected []string
		}{
			{filter: "expired", expected: []string{"Milk"}},
			{filter: "expiring-soon", expected: []string{"Bread", "Eggs"}},
			{filter: "Good", expected: []string{"Rice"}},
		}

		for _, tt := range tests {
			w := call(t, server, http.MethodGet, "/api/products?filter="+tt.filter, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expected, productTitles(decodeProducts(t, w)), tt.filter)
		}
	})

	t.Run("GET /api/products/summary counts buckets", func(t *testing.T) {
		reseed(t, testDB, server)

		w := call(t, server, http.MethodGet, "/api/products/summary", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var summary model.Summary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Equal(t, model.Summary{Total: 4, Expired: 1, ExpiringSoon: 2, Good: 1}, summary)
	})

	t.Run("Create, update, archive and delete a product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		expires := time.Now().AddDate(0, 0, 3).Format(model.DateLayout)
		w := call(t, server, http.MethodPost, "/api/products", model.ProductRequest{
			Title:      "Cheese",
			ExpiryDate: expires,
			Memo:       "wrapped",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		path := "/api/products/" + created.ID.String()

		w = call(t, server, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var fetched model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
		assert.Equal(t, "Cheese", fetched.Title)
		assert.Equal(t, "wrapped", fetched.Memo)
		assert.Equal(t, expires, fetched.ExpiryDate.Local().Format(model.DateLayout))

		w = call(t, server, http.MethodPut, path, model.ProductRequest{Title: "Blue cheese", ExpiryDate: expires})
		require.Equal(t, http.StatusOK, w.Code)

		w = call(t, server, http.MethodPost, path+"/archive", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = call(t, server, http.MethodGet, "/api/products", nil)
		assert.Empty(t, decodeProducts(t, w))

		w = call(t, server, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = call(t, server, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("POST /api/products rejects invalid input", func(t *testing.T) {
		w := call(t, server, http.MethodPost, "/api/products", model.ProductRequest{Title: "Cheese", ExpiryDate: "soon"})

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp model.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, model.ErrCodeInvalidDate, resp.Error)
		assert.NotEmpty(t, resp.CorrelationID)
	})

	t.Run("POST /api/products/delete removes rows of the filtered list", func(t *testing.T) {
		reseed(t, testDB, server)

		w := call(t, server, http.MethodPost, "/api/products/delete", model.DeleteRequest{
			Filter:  "Expiring Soon",
			Indexes: []int{1, 0},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeProducts(t, w))

		var remaining int
		require.NoError(t, testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM products").Scan(&remaining))
		assert.Equal(t, 3, remaining)
	})

	t.Run("POST /api/products/delete with a bad index deletes nothing", func(t *testing.T) {
		reseed(t, testDB, server)

		w := call(t, server, http.MethodPost, "/api/products/delete", model.DeleteRequest{
			Filter:  "Expired",
			Indexes: []int{0, 4},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = call(t, server, http.MethodGet, "/api/products", nil)
		assert.Len(t, decodeProducts(t, w), 4)
	})

	t.Run("GET /api/products without API key returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /health returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
