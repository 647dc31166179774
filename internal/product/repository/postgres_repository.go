package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, category, subcategory, price, compare_at_price,
	images, sizes, colors, materials, care, stock, supplier_product_id, supplier_sku,
	is_active, is_featured, rating, review_count, created_at, updated_at`

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                     domain.Product
		compareAt             decimal.NullDecimal
		images, sizes, colors []byte
		materials, care       pq.StringArray
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Subcategory, &p.Price, &compareAt,
		&images, &sizes, &colors, &materials, &care, &p.Stock, &p.SupplierProductID, &p.SupplierSKU,
		&p.IsActive, &p.IsFeatured, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if compareAt.Valid {
		v := compareAt.Decimal
		p.CompareAtPrice = &v
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
		return nil, fmt.Errorf("decode sizes: %w", err)
	}
	if err := json.Unmarshal(colors, &p.Colors); err != nil {
		return nil, fmt.Errorf("decode colors: %w", err)
	}
	p.Materials = []string(materials)
	p.Care = []string(care)
	return &p, nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error) {
	where := []string{"is_active = TRUE"}
	args := []interface{}{}
	if q.Category != "" {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if q.Featured {
		where = append(where, "is_featured = TRUE")
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE `+clause, args...).Scan(&total); err != nil {
		logger.Error("ListProducts: count failed", err)
		return nil, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + clause + ` ORDER BY created_at ASC, id ASC`
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	products, err := r.query(ctx, query, args...)
	if err != nil {
		logger.Error("ListProducts: query failed", err)
		return nil, err
	}
	return &domain.ListResult{Products: products, Total: total}, nil
}

func (r *postgresProductRepository) ListActiveProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := r.query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active = TRUE ORDER BY created_at ASC, id ASC`)
	if err != nil {
		logger.Error("ListActiveProducts: query failed", err)
		return nil, err
	}
	return products, nil
}

func (r *postgresProductRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			logger.Error("ListProducts: scan failed", err)
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		logger.Error("ListProducts: rows iteration error", err)
		return nil, err
	}
	return products, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err)
		return nil, err
	}
	return p, nil
}

func encodeJSONColumns(p *domain.Product) (images, sizes, colors []byte, err error) {
	if images, err = json.Marshal(nonNil(p.Images)); err != nil {
		return
	}
	if sizes, err = json.Marshal(nonNil(p.Sizes)); err != nil {
		return
	}
	colors, err = json.Marshal(nonNil(p.Colors))
	return
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	images, sizes, colors, err := encodeJSONColumns(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `INSERT INTO products (` + productColumns + `)
              VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`
	_, err = r.db.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Subcategory, p.Price,
		nullDecimal(p.CompareAtPrice), images, sizes, colors, pq.Array(nonNil(p.Materials)), pq.Array(nonNil(p.Care)),
		p.Stock, p.SupplierProductID, p.SupplierSKU, p.IsActive, p.IsFeatured, p.Rating, p.ReviewCount,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		logger.Error("CreateProduct: insert failed", err, map[string]interface{}{"product_id": p.ID})
		return err
	}
	return nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	images, sizes, colors, err := encodeJSONColumns(p)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	// stock sengaja tidak ditulis: hanya AdjustStock/SetStock yang boleh mengubahnya
	query := `UPDATE products SET name=$2, description=$3, category=$4, subcategory=$5, price=$6,
              compare_at_price=$7, images=$8, sizes=$9, colors=$10, materials=$11, care=$12,
              is_active=$13, is_featured=$14, updated_at=$15
              WHERE id=$1
              RETURNING stock`
	err = r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Description, p.Category, p.Subcategory, p.Price,
		nullDecimal(p.CompareAtPrice), images, sizes, colors, pq.Array(nonNil(p.Materials)), pq.Array(nonNil(p.Care)),
		p.IsActive, p.IsFeatured, p.UpdatedAt).Scan(&p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		logger.Error("UpdateProduct: update failed", err, map[string]interface{}{"product_id": p.ID})
		return err
	}
	return nil
}

func (r *postgresProductRepository) SetStock(ctx context.Context, id string, stock int) (int, error) {
	if stock < 0 {
		return 0, ErrInsufficientStock
	}
	var out int
	err := r.db.QueryRowContext(ctx,
		`UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1 RETURNING stock`, id, stock).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		logger.Error("SetStock: update failed", err, map[string]interface{}{"product_id": id})
		return 0, err
	}
	return out, nil
}

// AdjustStock relies on the WHERE guard so concurrent updates cannot drive stock below zero.
func (r *postgresProductRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1 AND stock + $2 >= 0 RETURNING stock`,
		id, delta).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		logger.Error("AdjustStock: update failed", err, map[string]interface{}{"product_id": id, "delta": delta})
		return 0, err
	}

	// Bedakan produk tidak ada vs stok kurang
	err = r.db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}
	return stock, ErrInsufficientStock
}

func (r *postgresProductRepository) SetStockBySupplierID(ctx context.Context, supplierProductID string, stock int) (int, error) {
	if stock < 0 {
		stock = 0
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = $2, updated_at = NOW() WHERE supplier_product_id = $1`, supplierProductID, stock)
	if err != nil {
		logger.Error("SetStockBySupplierID: exec failed", err, map[string]interface{}{"supplier_product_id": supplierProductID})
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
