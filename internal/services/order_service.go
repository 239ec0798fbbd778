package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront-system/internal/apperror"
	"storefront-system/internal/database"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"
)

// OrderService представляет сервис для работы с заказами
type OrderService struct {
	db    *database.DB
	log   *logger.Logger
	promo *PromoService
}

// NewOrderService создает новый экземпляр сервиса заказов
func NewOrderService(db *database.DB, log *logger.Logger, promo *PromoService) *OrderService {
	return &OrderService{
		db:    db,
		log:   log,
		promo: promo,
	}
}

const orderColumns = `id, product_id, package_id, product_name, category_name, package_name,
	       price, original_price, discount_amount, promo_code, user_data, payment_proof,
	       status, created_at, updated_at`

// CreateOrder создает заказ. Имена и цена снимаются с каталога в момент
// оформления, скидка пересчитывается на сервере; клиентские суммы не
// принимаются. Промокод расходуется в той же транзакции, что и вставка
// заказа.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if req.ProductID == 0 || req.PackageID == 0 || len(req.UserData) == 0 {
		return nil, apperror.Validation("Missing required fields", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Снимок каталога: названия и цена фиксируются в момент оформления.
	var (
		productName  string
		categoryName string
	)
	productQuery := `
		SELECT p.name, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`
	if err := tx.QueryRowContext(ctx, productQuery, req.ProductID).
		Scan(&productName, &categoryName); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Product not found", err)
		}
		return nil, fmt.Errorf("failed to load product snapshot: %w", err)
	}

	var (
		packageName string
		price       decimal.Decimal
	)
	packageQuery := `
		SELECT name, price
		FROM packages
		WHERE id = $1 AND product_id = $2 AND enabled
	`
	if err := tx.QueryRowContext(ctx, packageQuery, req.PackageID, req.ProductID).
		Scan(&packageName, &price); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Package not found or disabled", err)
		}
		return nil, fmt.Errorf("failed to load package snapshot: %w", err)
	}

	order := &models.Order{
		ProductID:    req.ProductID,
		PackageID:    req.PackageID,
		ProductName:  productName,
		CategoryName: categoryName,
		PackageName:  packageName,
		Price:        price,
		UserData:     req.UserData,
		PaymentProof: req.PaymentProof,
		Status:       models.OrderStatusPending,
	}

	if req.PromoCode != nil && *req.PromoCode != "" {
		if s.promo == nil {
			return nil, apperror.Validation("Kode promo tidak didukung", nil)
		}

		promo, discount, err := s.promo.ApplyPromoWithTx(ctx, tx, *req.PromoCode, price)
		if err != nil {
			return nil, err
		}

		original := price
		final := price.Sub(discount)
		if final.IsNegative() {
			final = decimal.Zero
		}
		order.Price = final
		order.OriginalPrice = &original
		order.DiscountAmount = &discount
		order.PromoCode = &promo.Code
	}

	userData, err := json.Marshal(orderUserData(order.UserData))
	if err != nil {
		return nil, apperror.Validation("user_data must be an object of strings", err)
	}

	insertQuery := `
		INSERT INTO orders (product_id, package_id, product_name, category_name, package_name,
		                    price, original_price, discount_amount, promo_code, user_data, payment_proof,
		                    status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	if err := tx.QueryRowContext(ctx, insertQuery,
		order.ProductID, order.PackageID, order.ProductName, order.CategoryName, order.PackageName,
		order.Price, order.OriginalPrice, order.DiscountAmount, order.PromoCode, userData, order.PaymentProof,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"product":  order.ProductName,
		"price":    order.Price,
	}).Info("Order created successfully")

	return order, nil
}

// GetOrderByID получает заказ по ID
func (s *OrderService) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = $1"

	order, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Order not found", err)
		}
		return nil, err
	}
	return order, nil
}

// ListOrders возвращает заказы, новые первыми. Пустой status — все.
func (s *OrderService) ListOrders(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	args := []interface{}{}
	if status != "" {
		if !status.Valid() {
			return nil, apperror.Validation("Invalid status", nil)
		}
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus переводит заказ в новый статус и возвращает прежний.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, models.OrderStatus, error) {
	if !status.Valid() {
		return nil, "", apperror.Validation("Invalid status", nil)
	}

	query := `
		UPDATE orders o
		SET status = $1, updated_at = NOW()
		FROM (SELECT id, status FROM orders WHERE id = $2 FOR UPDATE) old
		WHERE o.id = old.id
		RETURNING old.status
	`

	var oldStatus models.OrderStatus
	if err := s.db.QueryRowContext(ctx, query, status, id).Scan(&oldStatus); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", apperror.NotFound("Order not found", err)
		}
		return nil, "", fmt.Errorf("failed to update order status: %w", err)
	}

	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	s.log.WithFields(map[string]interface{}{
		"order_id":   id,
		"old_status": oldStatus,
		"new_status": status,
	}).Info("Order status updated")

	return order, oldStatus, nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var rawUserData []byte
	if err := row.Scan(
		&order.ID, &order.ProductID, &order.PackageID, &order.ProductName, &order.CategoryName, &order.PackageName,
		&order.Price, &order.OriginalPrice, &order.DiscountAmount, &order.PromoCode, &rawUserData, &order.PaymentProof,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	order.UserData = map[string]string{}
	if len(rawUserData) > 0 {
		if err := json.Unmarshal(rawUserData, &order.UserData); err != nil {
			return nil, fmt.Errorf("failed to decode order user data: %w", err)
		}
	}
	return order, nil
}

func orderUserData(data map[string]string) map[string]string {
	if data == nil {
		return map[string]string{}
	}
	return data
}
