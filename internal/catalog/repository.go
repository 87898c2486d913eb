package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the query surface the repository needs; *pgxpool.Pool
// satisfies it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool Querier
}

// NewRepository constructs a repository.
func NewRepository(pool Querier) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, price, cost_price, stock, active, category, barcode, description, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CostPrice, &p.Stock, &p.IsActive,
		&p.Category, &p.Barcode, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Get fetches a product by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// GetByBarcode fetches the active product carrying the barcode. Deactivated
// products may share a barcode with their active replacement, so the lookup
// must never match a retired row.
func (r *Repository) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND active`, barcode)
	return scanProduct(row)
}

// List returns products matching the filter plus the unfiltered total.
func (r *Repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, *req.Category)
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(lower(name) LIKE $%d OR (barcode = $%d AND active))", argPos, argPos+1))
		args = append(args, "%"+*req.Search+"%", *req.Search)
		argPos += 2
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CostPrice, &p.Stock, &p.IsActive,
			&p.Category, &p.Barcode, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// ListForPOS returns the active, in-stock projection served to the sale screen.
func (r *Repository) ListForPOS(ctx context.Context) ([]POSProduct, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price, stock, category, barcode
FROM products WHERE active AND stock > 0 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []POSProduct
	for rows.Next() {
		var p POSProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Category, &p.Barcode); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create inserts a product and returns its id.
func (r *Repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products (name, price, cost_price, stock, active, category, barcode, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.Name, p.Price, p.CostPrice, p.Stock, p.IsActive, p.Category, p.Barcode, p.Description).Scan(&id)
	if err != nil {
		return 0, mapCatalogError(err)
	}
	return id, nil
}

// Update applies the given column updates to a product.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE products SET updated_at = NOW()"
	var args []interface{}
	argPos := 1
	for _, col := range []string{"name", "price", "cost_price", "category", "barcode", "description"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapCatalogError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive flips the soft-delete flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories returns all categories.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, active FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, c Category) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (name, description, active) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Description, c.IsActive).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateCategory
		}
		return 0, err
	}
	return id, nil
}

// ListLowStock returns active products at or below the threshold.
func (r *Repository) ListLowStock(ctx context.Context, threshold int) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products
WHERE active AND stock <= $1 ORDER BY stock, name`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CostPrice, &p.Stock, &p.IsActive,
			&p.Category, &p.Barcode, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func mapCatalogError(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicateBarcode
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
