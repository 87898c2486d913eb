package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/inventory"
	"github.com/meridian-pos/meridian-pos/internal/platform/db"
)

// ProductSnapshot is the catalog state of a product as seen inside the sale
// transaction: the price here is the one frozen into the line item.
type ProductSnapshot struct {
	ID     int64
	Name   string
	Price  float64
	Active bool
}

// Repository defines persistence for committed sales.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error)
}

// TxRepository exposes the operations available inside one sale transaction.
type TxRepository interface {
	GetProductForSale(ctx context.Context, productID int64) (*ProductSnapshot, error)
	ReserveStock(ctx context.Context, productID int64, qty int) error
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertItems(ctx context.Context, saleID int64, items []SaleItem) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool   *pgxpool.Pool
	ledger inventory.Ledger
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool, ledger inventory.Ledger) *PGRepository {
	return &PGRepository{pool: pool, ledger: ledger}
}

// WithTx wraps the callback in a read-committed transaction. Every store
// interaction of one sale happens inside it, so any error rolls the whole
// sale back and no partial reservation survives.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx, ledger: r.ledger})
	})
}

type txRepo struct {
	tx     pgx.Tx
	ledger inventory.Ledger
}

func (r *txRepo) GetProductForSale(ctx context.Context, productID int64) (*ProductSnapshot, error) {
	var snap ProductSnapshot
	err := r.tx.QueryRow(ctx, `SELECT id, name, price, active FROM products WHERE id = $1`, productID).
		Scan(&snap.ID, &snap.Name, &snap.Price, &snap.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, err
	}
	return &snap, nil
}

func (r *txRepo) ReserveStock(ctx context.Context, productID int64, qty int) error {
	return r.ledger.Reserve(ctx, r.tx, productID, qty)
}

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (code, sold_at, total, payment_method, cash_received, change, customer_id, cashier_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		sale.Code, sale.SoldAt, sale.Total, sale.PaymentMethod, sale.CashReceived, sale.Change,
		sale.CustomerID, sale.CashierID).Scan(&id)
	return id, err
}

func (r *txRepo) InsertItems(ctx context.Context, saleID int64, items []SaleItem) error {
	for _, item := range items {
		_, err := r.tx.Exec(ctx, `INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)`, saleID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return err
		}
	}
	return nil
}

const saleColumns = `id, code, sold_at, total, payment_method, cash_received, change, customer_id, cashier_id`

// Get fetches a sale with its line items.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Sale, error) {
	var s Sale
	err := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id).
		Scan(&s.ID, &s.Code, &s.SoldAt, &s.Total, &s.PaymentMethod, &s.CashReceived, &s.Change, &s.CustomerID, &s.CashierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, product_id, quantity, unit_price, subtotal
FROM sale_items WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	return &s, rows.Err()
}

// List returns sale headers matching the filter plus the total count.
func (r *PGRepository) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.From != nil {
		conditions = append(conditions, fmt.Sprintf("sold_at >= $%d", argPos))
		args = append(args, *req.From)
		argPos++
	}
	if req.To != nil {
		conditions = append(conditions, fmt.Sprintf("sold_at <= $%d", argPos))
		args = append(args, *req.To)
		argPos++
	}
	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.CashierID != nil {
		conditions = append(conditions, fmt.Sprintf("cashier_id = $%d", argPos))
		args = append(args, *req.CashierID)
		argPos++
	}
	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM sales %s ORDER BY sold_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		saleColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.Code, &s.SoldAt, &s.Total, &s.PaymentMethod, &s.CashReceived, &s.Change, &s.CustomerID, &s.CashierID); err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	return result, total, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
