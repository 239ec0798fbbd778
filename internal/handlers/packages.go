package handlers

import (
	"net/http"
	"strings"

	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// PackagesHandler обслуживает тарифы товаров.
type PackagesHandler struct {
	catalog CatalogService
	log     *logger.Logger
}

// NewPackagesHandler создает обработчик тарифов.
func NewPackagesHandler(catalog CatalogService, log *logger.Logger) *PackagesHandler {
	return &PackagesHandler{
		catalog: catalog,
		log:     log,
	}
}

// ByProduct обрабатывает /api/packages/product/{productId}[/admin]:
// публичный список включённых тарифов либо полный для админки.
func (h *PackagesHandler) ByProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	productID, err := extractIDFromPath(r.URL.Path, "/api/packages/product/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	onlyEnabled := !strings.HasSuffix(r.URL.Path, "/admin")
	packages, err := h.catalog.ListPackagesByProduct(r.Context(), productID, onlyEnabled)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list packages")
		return
	}
	writeJSONResponse(w, http.StatusOK, packages)
}

// Create обрабатывает POST /api/packages.
func (h *PackagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreatePackageRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pkg, err := h.catalog.CreatePackage(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create package")
		return
	}
	writeJSONResponse(w, http.StatusCreated, pkg)
}

// Item обрабатывает /api/packages/{id}.
func (h *PackagesHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := extractIDFromPath(r.URL.Path, "/api/packages/")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid package ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		pkg, err := h.catalog.GetPackageByID(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to get package")
			return
		}
		writeJSONResponse(w, http.StatusOK, pkg)
	case http.MethodPut:
		var req models.UpdatePackageRequest
		if err := decodeJSONBody(r, &req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		pkg, err := h.catalog.UpdatePackage(r.Context(), id, &req)
		if err != nil {
			writeServiceError(w, h.log, err, "Failed to update package")
			return
		}
		writeJSONResponse(w, http.StatusOK, pkg)
	case http.MethodDelete:
		if err := h.catalog.DeletePackage(r.Context(), id); err != nil {
			writeServiceError(w, h.log, err, "Failed to delete package")
			return
		}
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
