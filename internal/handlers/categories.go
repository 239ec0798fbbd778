package handlers

import (
	"net/http"

	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// CategoriesHandler обслуживает категории каталога.
type CategoriesHandler struct {
	catalog    CatalogService
	storefront StorefrontService
	log        *logger.Logger
}

// NewCategoriesHandler создает обработчик категорий.
func NewCategoriesHandler(catalog CatalogService, storefront StorefrontService, log *logger.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		catalog:    catalog,
		storefront: storefront,
		log:        log,
	}
}

// Collection обрабатывает /api/categories.
func (h *CategoriesHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := h.catalog.ListCategories(r.Context())
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to list categories")
			return
		}
		writeJSONResponse(w, http.StatusOK, categories)
	case http.MethodPost:
		var req models.CreateCategoryRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		category, err := h.catalog.CreateCategory(r.Context(), &req)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to create category")
			return
		}
		h.invalidateHomepage(r)
		writeJSONResponse(w, http.StatusCreated, category)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// Item обрабатывает /api/categories/{id}.
func (h *CategoriesHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := extractIDFromPath(r.URL.Path, "/api/categories/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		category, err := h.catalog.GetCategoryByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to get category")
			return
		}
		writeJSONResponse(w, http.StatusOK, category)
	case http.MethodPut:
		var req models.UpdateCategoryRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		category, err := h.catalog.UpdateCategory(r.Context(), id, &req)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to update category")
			return
		}
		h.invalidateHomepage(r)
		writeJSONResponse(w, http.StatusOK, category)
	case http.MethodDelete:
		if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
			writeServiceError(w, h.log, err, "Failed to delete category")
			return
		}
		h.invalidateHomepage(r)
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *CategoriesHandler) invalidateHomepage(r *http.Request) {
	if h.storefront != nil {
		h.storefront.InvalidateHomepage(r.Context())
	}
}
