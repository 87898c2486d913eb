package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations the ledger needs. Both a pool and
// an open transaction satisfy it, so reservations run inside whatever
// transactional scope the caller established.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Ledger owns product stock counts. It is stateless; all state lives in the
// products table.
type Ledger struct{}

// Reserve atomically checks and decrements stock for one product. The check
// and the decrement are a single guarded UPDATE so that two concurrent
// reservations can never both succeed past the remaining stock: the losing
// transaction sees zero affected rows and the follow-up read explains why.
func (Ledger) Reserve(ctx context.Context, q Querier, productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	tag, err := q.Exec(ctx, `UPDATE products
SET stock = stock - $2, updated_at = NOW()
WHERE id = $1 AND active AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// The guarded update matched nothing; find out which guard failed.
	var active bool
	var stock int
	err = q.QueryRow(ctx, `SELECT active, stock FROM products WHERE id = $1`, productID).Scan(&active, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{ProductID: productID}
		}
		return err
	}
	if !active {
		return &InactiveError{ProductID: productID}
	}
	return &InsufficientStockError{ProductID: productID, Requested: qty, Available: stock}
}

// Release returns previously reserved stock, compensating an aborted
// multi-step operation.
func (Ledger) Release(ctx context.Context, q Querier, productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	tag, err := q.Exec(ctx, `UPDATE products
SET stock = stock + $2, updated_at = NOW()
WHERE id = $1`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{ProductID: productID}
	}
	return nil
}

// Stock reads the current stock level and active flag of one product.
func (Ledger) Stock(ctx context.Context, q Querier, productID int64) (int, bool, error) {
	var stock int
	var active bool
	err := q.QueryRow(ctx, `SELECT stock, active FROM products WHERE id = $1`, productID).Scan(&stock, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, &NotFoundError{ProductID: productID}
		}
		return 0, false, err
	}
	return stock, active, nil
}

// SetStock writes an absolute stock level, used for manual corrections.
func (Ledger) SetStock(ctx context.Context, q Querier, productID int64, stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	tag, err := q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`, productID, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{ProductID: productID}
	}
	return nil
}
