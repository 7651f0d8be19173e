package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/app/aggregation"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
)

// CatalogHandler serves the lookup lists and the dashboard
type CatalogHandler struct {
	catalog   *service.CatalogService
	dashboard *service.DashboardService
	logger    *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, dashboard *service.DashboardService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, dashboard: dashboard, logger: logger}
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, categories)
}

// ListManufacturers handles GET /manufacturers
func (h *CatalogHandler) ListManufacturers(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := h.catalog.ListManufacturers(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, manufacturers)
}

// ListUsers handles GET /users
func (h *CatalogHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.catalog.ListUsers(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}

// Dashboard handles GET /dashboard
func (h *CatalogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	criteria, err := aggregation.ParseCriteria(r.URL.Query())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	dashboard, err := h.dashboard.Dashboard(r.Context(), criteria)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, dashboard)
}
