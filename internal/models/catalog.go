package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Денежные поля сериализуются как числа, а не строки.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category представляет категорию каталога.
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	Icon        *string   `json:"icon,omitempty" db:"icon"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CategorySummary — категория с количеством активных товаров (для витрины).
type CategorySummary struct {
	Category
	ProductCount int `json:"product_count"`
}

// CreateCategoryRequest описывает запрос на создание категории.
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// UpdateCategoryRequest описывает запрос на обновление категории.
type UpdateCategoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// InputField описывает поле динамической формы оформления заказа.
type InputField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
	Help        string `json:"help,omitempty"`
}

// Product представляет товар каталога.
type Product struct {
	ID           int64        `json:"id" db:"id"`
	CategoryID   int64        `json:"category_id" db:"category_id"`
	Name         string       `json:"name" db:"name"`
	Slug         string       `json:"slug" db:"slug"`
	Description  *string      `json:"description,omitempty" db:"description"`
	ImageURL     *string      `json:"image_url,omitempty" db:"image_url"`
	ServiceType  string       `json:"service_type" db:"service_type"`
	InputFields  []InputField `json:"input_fields"`
	Enabled      bool         `json:"enabled" db:"enabled"`
	CategoryName string       `json:"category_name,omitempty"`
	CategorySlug string       `json:"category_slug,omitempty"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// CreateProductRequest описывает запрос на создание товара.
type CreateProductRequest struct {
	CategoryID  int64        `json:"category_id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
	ServiceType string       `json:"service_type"`
	InputFields []InputField `json:"input_fields"`
	Enabled     *bool        `json:"enabled,omitempty"`
}

// UpdateProductRequest описывает запрос на обновление товара.
type UpdateProductRequest struct {
	CategoryID  *int64       `json:"category_id,omitempty"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
	ServiceType string       `json:"service_type"`
	InputFields []InputField `json:"input_fields,omitempty"`
	Enabled     *bool        `json:"enabled,omitempty"`
}

// Package представляет покупаемый тариф товара.
type Package struct {
	ID          int64           `json:"id" db:"id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	ImageURL    *string         `json:"image_url,omitempty" db:"image_url"`
	Price       decimal.Decimal `json:"price" db:"price"`
	DownloadURL *string         `json:"download_url,omitempty" db:"download_url"`
	FileType    *string         `json:"file_type,omitempty" db:"file_type"`
	Enabled     bool            `json:"enabled" db:"enabled"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// CreatePackageRequest описывает запрос на создание тарифа.
type CreatePackageRequest struct {
	ProductID   int64            `json:"product_id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Price       *decimal.Decimal `json:"price"`
	DownloadURL *string          `json:"download_url,omitempty"`
	FileType    *string          `json:"file_type,omitempty"`
	Enabled     *bool            `json:"enabled,omitempty"`
}

// UpdatePackageRequest описывает запрос на обновление тарифа.
type UpdatePackageRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	DownloadURL *string          `json:"download_url,omitempty"`
	FileType    *string          `json:"file_type,omitempty"`
	Enabled     *bool            `json:"enabled,omitempty"`
}

// HomepageData — данные публичной витрины.
type HomepageData struct {
	Categories       []*CategorySummary `json:"categories"`
	FeaturedProducts []*Product         `json:"featured_products"`
}
