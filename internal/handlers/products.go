package handlers

import (
	"net/http"

	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// ProductsHandler обслуживает товары каталога.
type ProductsHandler struct {
	catalog    CatalogService
	storefront StorefrontService
	log        *logger.Logger
}

// NewProductsHandler создает обработчик товаров.
func NewProductsHandler(catalog CatalogService, storefront StorefrontService, log *logger.Logger) *ProductsHandler {
	return &ProductsHandler{
		catalog:    catalog,
		storefront: storefront,
		log:        log,
	}
}

// Collection обрабатывает /api/products: публичный список включённых
// товаров и создание.
func (h *ProductsHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := h.catalog.ListProducts(r.Context(), true)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to list products")
			return
		}
		writeJSONResponse(w, http.StatusOK, products)
	case http.MethodPost:
		var req models.CreateProductRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		product, err := h.catalog.CreateProduct(r.Context(), &req)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to create product")
			return
		}
		h.invalidateHomepage(r)
		writeJSONResponse(w, http.StatusCreated, product)
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// AdminList отдает все товары, включая выключенные.
func (h *ProductsHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), false)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list products")
		return
	}
	writeJSONResponse(w, http.StatusOK, products)
}

// ByCategory отдает включённые товары категории.
func (h *ProductsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	categoryID, err := extractIDFromPath(r.URL.Path, "/api/products/category/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	products, err := h.catalog.ListProductsByCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list products")
		return
	}
	writeJSONResponse(w, http.StatusOK, products)
}

// Item обрабатывает /api/products/{id}.
func (h *ProductsHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := extractIDFromPath(r.URL.Path, "/api/products/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := h.catalog.GetProductByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to get product")
			return
		}
		writeJSONResponse(w, http.StatusOK, product)
	case http.MethodPut:
		var req models.UpdateProductRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		product, err := h.catalog.UpdateProduct(r.Context(), id, &req)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to update product")
			return
		}
		h.invalidateHomepage(r)
		writeJSONResponse(w, http.StatusOK, product)
	case http.MethodDelete:
		if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
			writeServiceError(w, h.log, err, "Failed to delete product")
			return
		}
		h.invalidateHomepage(r)
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *ProductsHandler) invalidateHomepage(r *http.Request) {
	if h.storefront != nil {
		h.storefront.InvalidateHomepage(r.Context())
	}
}
