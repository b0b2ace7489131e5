package handler

import (
	"encoding/json"
	"net/http"

	"expired/internal/model"
	"expired/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products?filter=... requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := model.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeServiceError(w, r, err, "invalid filter", h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Summary handles GET /api/products/summary requests.
func (h *ProductHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Summary(r.Context()))
}

// Reload handles POST /api/products/reload requests.
func (h *ProductHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.service.Reload(r.Context())
	writeJSON(w, http.StatusOK, h.service.Summary(r.Context()))
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to create product", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req model.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Archive handles POST /api/products/{id}/archive requests.
func (h *ProductHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.Archive(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to archive product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete product", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAt handles POST /api/products/delete requests carrying a filter and an index set.
func (h *ProductHandler) DeleteAt(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if len(req.Indexes) == 0 {
		writeServiceError(w, r, model.ErrMissingIndexes, "indexes are required", h.logger)
		return
	}

	filter, err := model.ParseFilter(req.Filter)
	if err != nil {
		writeServiceError(w, r, err, "invalid filter", h.logger)
		return
	}

	if err := h.service.DeleteAt(r.Context(), filter, req.Indexes); err != nil {
		writeServiceError(w, r, err, "failed to delete products", h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// productID parses the {id} path value, answering 400 when it is not a UUID.
func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid product ID format", h.logger)
		return uuid.Nil, false
	}

	return id, true
}
