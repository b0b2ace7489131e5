package router

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
	"expired/internal/service"
	"expired/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	policy := model.ExpiryPolicy{SoonDays: 7, Now: func() time.Time { return testNow }}
	s := store.NewProductStore(context.Background(), repository.NewMemoryContext(), logger)
	svc := service.NewProductService(s, policy, logger)

	for i, offset := range []int{-2, 3, 30} {
		_, err := svc.Create(context.Background(), &model.ProductRequest{
			Title:      []string{"Milk", "Bread", "Rice"}[i],
			ExpiryDate: testNow.AddDate(0, 0, offset).Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	return New(handler.NewProductHandler(svc, logger), testAPIKey, logger)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	h := setupRouter(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "List", method: http.MethodGet, path: "/api/products", expectedStatus: http.StatusOK},
		{name: "List filtered", method: http.MethodGet, path: "/api/products?filter=expired", expectedStatus: http.StatusOK},
		{name: "List bad filter", method: http.MethodGet, path: "/api/products?filter=rotten", expectedStatus: http.StatusBadRequest},
		{name: "Summary", method: http.MethodGet, path: "/api/products/summary", expectedStatus: http.StatusOK},
		{name: "Reload", method: http.MethodPost, path: "/api/products/reload", expectedStatus: http.StatusOK},
		{name: "Bad ID", method: http.MethodGet, path: "/api/products/not-a-uuid", expectedStatus: http.StatusBadRequest},
		{name: "Unknown ID", method: http.MethodGet, path: "/api/products/7d0c4f5e-3a4b-4c1e-9a55-0f1f9d3b2a10", expectedStatus: http.StatusNotFound},
		{name: "Method not allowed", method: http.MethodPatch, path: "/api/products", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Unknown route", method: http.MethodGet, path: "/api/orders", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	h := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Header().Get("X-Request-ID"), body.CorrelationID)
}

func TestRouter_ProductLifecycle(t *testing.T) {
	h := setupRouter(t)

	w := do(t, h, http.MethodPost, "/api/products", model.ProductRequest{
		Title:      "Yoghurt",
		ExpiryDate: testNow.AddDate(0, 0, 1).Format(time.RFC3339),
		Memo:       "top shelf",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/api/products/" + created.ID.String()

	w = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPut, path, model.ProductRequest{
		Title:      "Greek yoghurt",
		ExpiryDate: testNow.AddDate(0, 0, 2).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Greek yoghurt", updated.Title)

	w = do(t, h, http.MethodPost, path+"/archive", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_DeleteAtFilteredIndexes(t *testing.T) {
	h := setupRouter(t)

	w := do(t, h, http.MethodPost, "/api/products/delete", model.DeleteRequest{
		Filter:  "Expiring Soon",
		Indexes: []int{0},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var remaining []model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &remaining))
	assert.Empty(t, remaining)

	w = do(t, h, http.MethodGet, "/api/products/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary model.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, model.Summary{Total: 2, Expired: 1, ExpiringSoon: 0, Good: 1}, summary)

	w = do(t, h, http.MethodPost, "/api/products/delete", model.DeleteRequest{
		Filter:  "All",
		Indexes: []int{5},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
