package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront-system/internal/apperror"
	"storefront-system/internal/models"
)

type stubCatalog struct {
	categories []*models.CategorySummary
	category   *models.Category
	products   []*models.Product
	product    *models.Product
	packages   []*models.Package
	pkg        *models.Package
	err        error

	listProductsOnlyEnabled *bool
	listPackagesOnlyEnabled *bool
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]*models.CategorySummary, error) {
	return s.categories, s.err
}
func (s *stubCatalog) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.category, s.err
}
func (s *stubCatalog) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	return s.category, s.err
}
func (s *stubCatalog) UpdateCategory(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error) {
	return s.category, s.err
}
func (s *stubCatalog) DeleteCategory(ctx context.Context, id int64) error {
	return s.err
}
func (s *stubCatalog) ListProducts(ctx context.Context, onlyEnabled bool) ([]*models.Product, error) {
	s.listProductsOnlyEnabled = &onlyEnabled
	return s.products, s.err
}
func (s *stubCatalog) ListProductsByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error) {
	return s.products, s.err
}
func (s *stubCatalog) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.product, s.err
}
func (s *stubCatalog) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	return s.product, s.err
}
func (s *stubCatalog) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {
	return s.product, s.err
}
func (s *stubCatalog) DeleteProduct(ctx context.Context, id int64) error {
	return s.err
}
func (s *stubCatalog) ListPackagesByProduct(ctx context.Context, productID int64, onlyEnabled bool) ([]*models.Package, error) {
	s.listPackagesOnlyEnabled = &onlyEnabled
	return s.packages, s.err
}
func (s *stubCatalog) GetPackageByID(ctx context.Context, id int64) (*models.Package, error) {
	return s.pkg, s.err
}
func (s *stubCatalog) CreatePackage(ctx context.Context, req *models.CreatePackageRequest) (*models.Package, error) {
	return s.pkg, s.err
}
func (s *stubCatalog) UpdatePackage(ctx context.Context, id int64, req *models.UpdatePackageRequest) (*models.Package, error) {
	return s.pkg, s.err
}
func (s *stubCatalog) DeletePackage(ctx context.Context, id int64) error {
	return s.err
}

func testCategory() *models.Category {
	return &models.Category{
		ID:        1,
		Name:      "Game Mobile",
		Slug:      "game-mobile",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCategoriesHandler_List(t *testing.T) {
	catalog := &stubCatalog{categories: []*models.CategorySummary{
		{Category: *testCategory(), ProductCount: 3},
	}}
	handler := NewCategoriesHandler(catalog, &stubStorefront{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rr := httptest.NewRecorder()
	handler.Collection(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var got []*models.CategorySummary
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].ProductCount != 3 {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestCategoriesHandler_CreateInvalidatesHomepage(t *testing.T) {
	storefront := &stubStorefront{}
	handler := NewCategoriesHandler(&stubCatalog{category: testCategory()}, storefront, newTestLogger())

	body := bytes.NewBufferString(`{"name":"Game Mobile","slug":"game-mobile"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/categories", body)
	rr := httptest.NewRecorder()
	handler.Collection(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if storefront.invalidated != 1 {
		t.Fatalf("expected homepage invalidation, got %d", storefront.invalidated)
	}
}

func TestCategoriesHandler_CreateDuplicate(t *testing.T) {
	catalog := &stubCatalog{err: apperror.Conflict("Category with this name or slug already exists", nil)}
	handler := NewCategoriesHandler(catalog, &stubStorefront{}, newTestLogger())

	body := bytes.NewBufferString(`{"name":"Game Mobile","slug":"game-mobile"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/categories", body)
	rr := httptest.NewRecorder()
	handler.Collection(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rr.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Category with this name or slug already exists" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestCategoriesHandler_DeleteBlocked(t *testing.T) {
	catalog := &stubCatalog{err: apperror.Validation("Cannot delete category with existing products", nil)}
	storefront := &stubStorefront{}
	handler := NewCategoriesHandler(catalog, storefront, newTestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/categories/1", nil)
	rr := httptest.NewRecorder()
	handler.Item(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if storefront.invalidated != 0 {
		t.Fatalf("homepage must not be invalidated on failure")
	}
}

func TestCategoriesHandler_Item_InvalidID(t *testing.T) {
	handler := NewCategoriesHandler(&stubCatalog{}, &stubStorefront{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/categories/abc", nil)
	rr := httptest.NewRecorder()
	handler.Item(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestProductsHandler_PublicListOnlyEnabled(t *testing.T) {
	catalog := &stubCatalog{products: []*models.Product{}}
	handler := NewProductsHandler(catalog, &stubStorefront{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rr := httptest.NewRecorder()
	handler.Collection(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if catalog.listProductsOnlyEnabled == nil || !*catalog.listProductsOnlyEnabled {
		t.Fatalf("public list must request only enabled products")
	}
}

func TestProductsHandler_AdminListAll(t *testing.T) {
	catalog := &stubCatalog{products: []*models.Product{}}
	handler := NewProductsHandler(catalog, &stubStorefront{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	rr := httptest.NewRecorder()
	handler.AdminList(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if catalog.listProductsOnlyEnabled == nil || *catalog.listProductsOnlyEnabled {
		t.Fatalf("admin list must include disabled products")
	}
}

func TestProductsHandler_NotFound(t *testing.T) {
	catalog := &stubCatalog{err: apperror.NotFound("Product not found", nil)}
	handler := NewProductsHandler(catalog, &stubStorefront{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/products/99", nil)
	rr := httptest.NewRecorder()
	handler.Item(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestPackagesHandler_ByProduct(t *testing.T) {
	price := decimal.NewFromInt(25000)
	catalog := &stubCatalog{packages: []*models.Package{
		{ID: 1, ProductID: 2, Name: "100 Diamonds", Price: price, Enabled: true},
	}}
	handler := NewPackagesHandler(catalog, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/packages/product/2", nil)
	rr := httptest.NewRecorder()
	handler.ByProduct(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if catalog.listPackagesOnlyEnabled == nil || !*catalog.listPackagesOnlyEnabled {
		t.Fatalf("public package list must request only enabled packages")
	}
}

func TestPackagesHandler_ByProductAdmin(t *testing.T) {
	catalog := &stubCatalog{packages: []*models.Package{}}
	handler := NewPackagesHandler(catalog, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/packages/product/2/admin", nil)
	rr := httptest.NewRecorder()
	handler.ByProduct(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if catalog.listPackagesOnlyEnabled == nil || *catalog.listPackagesOnlyEnabled {
		t.Fatalf("admin package list must include disabled packages")
	}
}

func TestPackagesHandler_CreateValidationError(t *testing.T) {
	catalog := &stubCatalog{err: apperror.Validation("Price must be non-negative", nil)}
	handler := NewPackagesHandler(catalog, newTestLogger())

	body := bytes.NewBufferString(`{"product_id":2,"name":"100 Diamonds","price":-1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/packages", body)
	rr := httptest.NewRecorder()
	handler.Create(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPackagesHandler_Delete(t *testing.T) {
	handler := NewPackagesHandler(&stubCatalog{}, newTestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/packages/5", nil)
	rr := httptest.NewRecorder()
	handler.Item(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("expected success response, got %+v", resp)
	}
}
