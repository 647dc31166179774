package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
)

const orderColumns = `id, user_id, order_number, status, subtotal, tax, shipping, total,
	payment_status, payment_method, payment_id, shipping_address, billing_address,
	supplier_order_id, tracking_number, notes, created_at, updated_at`

// DBTX dipenuhi oleh *sql.DB maupun *sql.Tx
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                         domain.Order
		userID, supplierID        sql.NullString
		tracking, notes           sql.NullString
		shippingAddr, billingAddr []byte
	)
	err := row.Scan(&o.ID, &userID, &o.OrderNumber, &o.Status, &o.Subtotal, &o.Tax, &o.Shipping, &o.Total,
		&o.PaymentStatus, &o.PaymentMethod, &o.PaymentID, &shippingAddr, &billingAddr,
		&supplierID, &tracking, &notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.UserID = userID.String
	o.SupplierOrderID = supplierID.String
	o.TrackingNumber = tracking.String
	o.Notes = notes.String
	if err := json.Unmarshal(shippingAddr, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if err := json.Unmarshal(billingAddr, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("decode billing address: %w", err)
	}
	return &o, nil
}

func (r *postgresOrderRepository) loadItems(ctx context.Context, q DBTX, o *domain.Order) error {
	rows, err := q.QueryContext(ctx, `SELECT id, product_id, product_name, product_image, size, color, quantity, price,
	        supplier_product_id, supplier_sku, supplier_order_item_id
	        FROM order_items WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		logger.Error("loadItems: query failed", err, map[string]interface{}{"order_id": o.ID})
		return err
	}
	defer rows.Close()

	o.Items = []domain.OrderItem{}
	for rows.Next() {
		var (
			i          domain.OrderItem
			supplierID sql.NullString
		)
		if err := rows.Scan(&i.ID, &i.ProductID, &i.ProductName, &i.ProductImage, &i.Size, &i.Color, &i.Quantity, &i.Price,
			&i.SupplierProductID, &i.SupplierSKU, &supplierID); err != nil {
			logger.Error("loadItems: scan failed", err)
			return err
		}
		i.SupplierOrderItemID = supplierID.String
		o.Items = append(o.Items, i)
	}
	return rows.Err()
}

// CreateOrder menyimpan order dan item-itemnya dalam satu transaksi.
func (r *postgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("CreateOrder: failed to begin tx", err)
		return err
	}
	defer tx.Rollback() // Rollback jika tidak di-commit

	shippingAddr, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}
	billingAddr, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	// 1. Simpan Order
	_, err = tx.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`)
	        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		order.ID, nullString(order.UserID), order.OrderNumber, order.Status, order.Subtotal, order.Tax, order.Shipping, order.Total,
		order.PaymentStatus, order.PaymentMethod, order.PaymentID, shippingAddr, billingAddr,
		nullString(order.SupplierOrderID), nullString(order.TrackingNumber), nullString(order.Notes), order.CreatedAt, order.UpdatedAt)
	if err != nil {
		logger.Error("CreateOrder: failed to insert order", err, map[string]interface{}{"order_id": order.ID})
		return err
	}

	// 2. Simpan Order Items
	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO order_items (id, order_id, product_id, product_name, product_image,
	        size, color, quantity, price, supplier_product_id, supplier_sku, supplier_order_item_id)
	        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`)
	if err != nil {
		logger.Error("CreateOrder: failed to prepare item statement", err)
		return err
	}
	defer itemStmt.Close()

	for _, it := range order.Items {
		_, err = itemStmt.ExecContext(ctx, it.ID, order.ID, it.ProductID, it.ProductName, it.ProductImage, it.Size, it.Color,
			it.Quantity, it.Price, it.SupplierProductID, it.SupplierSKU, nullString(it.SupplierOrderItemID))
		if err != nil {
			logger.Error("CreateOrder: failed to insert order item", err, map[string]interface{}{"item_product_id": it.ProductID})
			return err // Rollback akan terjadi
		}
	}

	return tx.Commit()
}

func (r *postgresOrderRepository) getOne(ctx context.Context, q DBTX, where string, arg interface{}) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrder: query failed", err)
		return nil, err
	}
	if err := r.loadItems(ctx, q, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getOne(ctx, r.db, "id = $1", orderID)
}

func (r *postgresOrderRepository) GetOrderBySupplierOrderID(ctx context.Context, supplierOrderID string) (*domain.Order, error) {
	return r.getOne(ctx, r.db, "supplier_order_id = $1", supplierOrderID)
}

func (r *postgresOrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("ListOrders: query failed", err)
		return nil, err
	}
	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			logger.Error("ListOrders: scan failed", err)
			return nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, r.db, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresOrderRepository) ListOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at ASC`, status)
}

func (r *postgresOrderRepository) GetPendingOrdersOlderThan(ctx context.Context, duration time.Duration) ([]domain.Order, error) {
	thresholdTime := time.Now().Add(-duration)
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
	        WHERE status = $1 AND payment_status <> $2 AND created_at < $3
	        ORDER BY created_at ASC`, domain.StatusPending, domain.PaymentCompleted, thresholdTime)
}

// UpdateOrder locks the row for the duration of fn.
func (r *postgresOrderRepository) UpdateOrder(ctx context.Context, orderID string, fn MutateFunc) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("UpdateOrder: failed to begin tx", err)
		return nil, err
	}
	defer tx.Rollback()

	o, err := r.getOne(ctx, tx, "id = $1 FOR UPDATE", orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	o.UpdatedAt = time.Now().UTC()

	shippingAddr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billingAddr, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE orders SET status=$2, payment_status=$3, payment_method=$4, payment_id=$5,
	        shipping_address=$6, billing_address=$7, supplier_order_id=$8, tracking_number=$9, notes=$10, updated_at=$11
	        WHERE id=$1`,
		o.ID, o.Status, o.PaymentStatus, o.PaymentMethod, o.PaymentID, shippingAddr, billingAddr,
		nullString(o.SupplierOrderID), nullString(o.TrackingNumber), nullString(o.Notes), o.UpdatedAt)
	if err != nil {
		logger.Error("UpdateOrder: exec failed", err, map[string]interface{}{"order_id": o.ID, "new_status": o.Status})
		return nil, err
	}
	for _, it := range o.Items {
		if it.SupplierOrderItemID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `UPDATE order_items SET supplier_order_item_id = $2 WHERE id = $1`,
			it.ID, it.SupplierOrderItemID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}
