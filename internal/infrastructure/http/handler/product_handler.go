package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/request"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := request.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), &req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := request.ProductID(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

// UpdateProduct handles PUT /products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := request.ProductID(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	var req dto.UpdateProductRequest
	if err := request.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := request.ProductID(r)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.MessageResponse{Message: "product deleted"})
}

// LinkCategory handles POST /products/categories
func (h *ProductHandler) LinkCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkCategoryRequest
	if err := request.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	link, err := h.service.LinkCategory(r.Context(), &req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, link)
}

// LinkManufacturer handles POST /products/manufacturers
func (h *ProductHandler) LinkManufacturer(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkManufacturerRequest
	if err := request.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	link, err := h.service.LinkManufacturer(r.Context(), &req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, link)
}

// LinkUser handles POST /products/users
func (h *ProductHandler) LinkUser(w http.ResponseWriter, r *http.Request) {
	var req dto.LinkUserRequest
	if err := request.DecodeJSONBody(r, &req); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	link, err := h.service.LinkUser(r.Context(), &req)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, link)
}
