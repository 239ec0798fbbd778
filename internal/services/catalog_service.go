package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"storefront-system/internal/apperror"
	"storefront-system/internal/database"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// CatalogService управляет категориями, товарами и тарифами.
type CatalogService struct {
	db  *database.DB
	log *logger.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(db *database.DB, log *logger.Logger) *CatalogService {
	return &CatalogService{
		db:  db,
		log: log,
	}
}

// ListCategories возвращает категории с количеством включённых товаров.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.CategorySummary, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.icon, c.created_at, c.updated_at,
		       COUNT(p.id) FILTER (WHERE p.enabled) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.CategorySummary{}
	for rows.Next() {
		c := &models.CategorySummary{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID возвращает категорию по идентификатору.
func (s *CatalogService) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}
	query := "SELECT id, name, slug, description, icon, created_at, updated_at FROM categories WHERE id = $1"
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Category not found", err)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// CreateCategory создаёт категорию.
func (s *CatalogService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		return nil, apperror.Validation("Name and slug are required", nil)
	}

	query := `
		INSERT INTO categories (name, slug, description, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, slug, description, icon, created_at, updated_at
	`

	c := &models.Category{}
	err := s.db.QueryRowContext(ctx, query, req.Name, req.Slug, req.Description, req.Icon).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("Category with this name or slug already exists", err)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.log.WithField("category_id", c.ID).Info("Category created")
	return c, nil
}

// UpdateCategory обновляет категорию.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		return nil, apperror.Validation("Name and slug are required", nil)
	}

	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, icon = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, name, slug, description, icon, created_at, updated_at
	`

	c := &models.Category{}
	err := s.db.QueryRowContext(ctx, query, req.Name, req.Slug, req.Description, req.Icon, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Category not found", err)
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Conflict("Category with this name or slug already exists", err)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// DeleteCategory удаляет категорию. Категория с товарами не удаляется.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE category_id = $1", id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if count > 0 {
		return apperror.Validation("Cannot delete category with existing products", nil)
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("Category not found", nil)
	}
	return nil
}

const productColumns = `p.id, p.category_id, p.name, p.slug, p.description, p.image_url, p.service_type, p.input_fields, p.enabled,
	       c.name AS category_name, c.slug AS category_slug, p.created_at, p.updated_at`

// ListProducts возвращает товары. Для витрины onlyEnabled=true.
func (s *CatalogService) ListProducts(ctx context.Context, onlyEnabled bool) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
	`
	if onlyEnabled {
		query += " WHERE p.enabled"
	}
	query += " ORDER BY p.created_at DESC"

	return s.queryProducts(ctx, query)
}

// ListProductsByCategory возвращает включённые товары категории.
func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.category_id = $1 AND p.enabled
		ORDER BY p.created_at DESC
	`
	return s.queryProducts(ctx, query, categoryID)
}

// ListFeaturedProducts возвращает новейшие включённые товары для витрины.
func (s *CatalogService) ListFeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	if limit <= 0 {
		limit = 6
	}
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.enabled
		ORDER BY p.created_at DESC
		LIMIT $1
	`
	return s.queryProducts(ctx, query, limit)
}

func (s *CatalogService) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductByID возвращает товар по идентификатору.
func (s *CatalogService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Product not found", err)
		}
		return nil, err
	}
	return p, nil
}

// CreateProduct создаёт товар.
func (s *CatalogService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		return nil, apperror.Validation("Name and slug are required", nil)
	}
	if req.CategoryID == 0 {
		return nil, apperror.Validation("category_id is required", nil)
	}

	fields, err := marshalInputFields(req.InputFields)
	if err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	query := `
		INSERT INTO products (category_id, name, slug, description, image_url, service_type, input_fields, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id
	`

	var id int64
	err = s.db.QueryRowContext(ctx, query,
		req.CategoryID, req.Name, req.Slug, req.Description, req.ImageURL, req.ServiceType, fields, enabled,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return nil, apperror.Conflict("Product with this slug already exists", err)
			case "23503":
				return nil, apperror.Validation("Category not found", err)
			}
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.WithField("product_id", id).Info("Product created")
	return s.GetProductByID(ctx, id)
}

// UpdateProduct обновляет товар.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req *models.UpdateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		return nil, apperror.Validation("Name and slug are required", nil)
	}

	current, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	categoryID := current.CategoryID
	if req.CategoryID != nil {
		categoryID = *req.CategoryID
	}
	inputFields := current.InputFields
	if req.InputFields != nil {
		inputFields = req.InputFields
	}
	enabled := current.Enabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	fields, err := marshalInputFields(inputFields)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET category_id = $1, name = $2, slug = $3, description = $4, image_url = $5,
		    service_type = $6, input_fields = $7, enabled = $8, updated_at = NOW()
		WHERE id = $9
	`
	if _, err := s.db.ExecContext(ctx, query,
		categoryID, req.Name, req.Slug, req.Description, req.ImageURL, req.ServiceType, fields, enabled, id,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return nil, apperror.Conflict("Product with this slug already exists", err)
			case "23503":
				return nil, apperror.Validation("Category not found", err)
			}
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProductByID(ctx, id)
}

// DeleteProduct удаляет товар. Товар с тарифами не удаляется.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages WHERE product_id = $1", id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count product packages: %w", err)
	}
	if count > 0 {
		return apperror.Validation("Cannot delete product with existing packages", nil)
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("Product not found", nil)
	}
	return nil
}

const packageColumns = "id, product_id, name, description, image_url, price, download_url, file_type, enabled, created_at, updated_at"

// ListPackagesByProduct возвращает тарифы товара по возрастанию цены.
// Для витрины onlyEnabled=true.
func (s *CatalogService) ListPackagesByProduct(ctx context.Context, productID int64, onlyEnabled bool) ([]*models.Package, error) {
	query := "SELECT " + packageColumns + " FROM packages WHERE product_id = $1"
	if onlyEnabled {
		query += " AND enabled"
	}
	query += " ORDER BY price ASC"

	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	packages := []*models.Package{}
	for rows.Next() {
		p := &models.Package{}
		if err := rows.Scan(packageFields(p)...); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

// GetPackageByID возвращает тариф по идентификатору.
func (s *CatalogService) GetPackageByID(ctx context.Context, id int64) (*models.Package, error) {
	p := &models.Package{}
	query := "SELECT " + packageColumns + " FROM packages WHERE id = $1"
	if err := s.db.QueryRowContext(ctx, query, id).Scan(packageFields(p)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Package not found", err)
		}
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return p, nil
}

// CreatePackage создаёт тариф.
func (s *CatalogService) CreatePackage(ctx context.Context, req *models.CreatePackageRequest) (*models.Package, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("Name is required", nil)
	}
	if req.ProductID == 0 {
		return nil, apperror.Validation("product_id is required", nil)
	}
	if req.Price == nil || req.Price.IsNegative() {
		return nil, apperror.Validation("Price must be a non-negative number", nil)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	query := `
		INSERT INTO packages (product_id, name, description, image_url, price, download_url, file_type, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + packageColumns

	p := &models.Package{}
	err := s.db.QueryRowContext(ctx, query,
		req.ProductID, req.Name, req.Description, req.ImageURL, *req.Price, req.DownloadURL, req.FileType, enabled,
	).Scan(packageFields(p)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, apperror.Validation("Product not found", err)
		}
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	s.log.WithField("package_id", p.ID).Info("Package created")
	return p, nil
}

// UpdatePackage обновляет тариф.
func (s *CatalogService) UpdatePackage(ctx context.Context, id int64, req *models.UpdatePackageRequest) (*models.Package, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("Name is required", nil)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, apperror.Validation("Price must be a non-negative number", nil)
	}

	current, err := s.GetPackageByID(ctx, id)
	if err != nil {
		return nil, err
	}

	price := current.Price
	if req.Price != nil {
		price = *req.Price
	}
	downloadURL := current.DownloadURL
	if req.DownloadURL != nil {
		downloadURL = req.DownloadURL
	}
	fileType := current.FileType
	if req.FileType != nil {
		fileType = req.FileType
	}
	enabled := current.Enabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	query := `
		UPDATE packages
		SET name = $1, description = $2, image_url = $3, price = $4,
		    download_url = $5, file_type = $6, enabled = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + packageColumns

	p := &models.Package{}
	err = s.db.QueryRowContext(ctx, query,
		req.Name, req.Description, req.ImageURL, price, downloadURL, fileType, enabled, id,
	).Scan(packageFields(p)...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Package not found", err)
		}
		return nil, fmt.Errorf("failed to update package: %w", err)
	}
	return p, nil
}

// DeletePackage удаляет тариф.
func (s *CatalogService) DeletePackage(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM packages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete package: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("Package not found", nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var rawFields []byte
	if err := row.Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.ImageURL, &p.ServiceType, &rawFields, &p.Enabled,
		&p.CategoryName, &p.CategorySlug, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	p.InputFields = []models.InputField{}
	if len(rawFields) > 0 {
		if err := json.Unmarshal(rawFields, &p.InputFields); err != nil {
			return nil, fmt.Errorf("failed to decode input fields: %w", err)
		}
	}
	return p, nil
}

func marshalInputFields(fields []models.InputField) ([]byte, error) {
	if fields == nil {
		fields = []models.InputField{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, apperror.Validation("input_fields must be a valid array", err)
	}
	return raw, nil
}

func packageFields(p *models.Package) []interface{} {
	return []interface{}{
		&p.ID, &p.ProductID, &p.Name, &p.Description, &p.ImageURL, &p.Price,
		&p.DownloadURL, &p.FileType, &p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	}
}
