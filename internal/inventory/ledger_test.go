package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// fakeQuerier interprets the ledger's statements against an in-memory
// product map, mirroring the SQL guards.
type fakeQuerier struct {
	products map[int64]*fakeProduct
}

type fakeProduct struct {
	stock  int
	active bool
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{products: make(map[int64]*fakeProduct)}
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	id := args[0].(int64)
	p, ok := f.products[id]
	if !ok {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	switch {
	case strings.Contains(sql, "stock = stock - $2"):
		qty := args[1].(int)
		if !p.active || p.stock < qty {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		p.stock -= qty
	case strings.Contains(sql, "stock = stock + $2"):
		p.stock += args[1].(int)
	case strings.Contains(sql, "stock = $2"):
		p.stock = args[1].(int)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	id := args[0].(int64)
	p, ok := f.products[id]
	if !ok {
		return errRow{pgx.ErrNoRows}
	}
	if strings.Contains(sql, "SELECT active, stock") {
		return valueRow{vals: []interface{}{p.active, p.stock}}
	}
	return valueRow{vals: []interface{}{p.stock, p.active}}
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...interface{}) error { return r.err }

type valueRow struct{ vals []interface{} }

func (r valueRow) Scan(dest ...interface{}) error {
	for i, v := range r.vals {
		switch d := dest[i].(type) {
		case *bool:
			*d = v.(bool)
		case *int:
			*d = v.(int)
		}
	}
	return nil
}

func TestReserveDecrementsStock(t *testing.T) {
	q := newFakeQuerier()
	q.products[1] = &fakeProduct{stock: 10, active: true}
	var ledger Ledger

	require.NoError(t, ledger.Reserve(context.Background(), q, 1, 4))
	require.Equal(t, 6, q.products[1].stock)
}

func TestReserveExactRemainder(t *testing.T) {
	q := newFakeQuerier()
	q.products[1] = &fakeProduct{stock: 5, active: true}
	var ledger Ledger

	require.NoError(t, ledger.Reserve(context.Background(), q, 1, 5))
	require.Equal(t, 0, q.products[1].stock)

	var stockErr *InsufficientStockError
	err := ledger.Reserve(context.Background(), q, 1, 1)
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 0, stockErr.Available)
}

func TestReserveGuards(t *testing.T) {
	q := newFakeQuerier()
	q.products[1] = &fakeProduct{stock: 3, active: true}
	q.products[2] = &fakeProduct{stock: 9, active: false}
	var ledger Ledger

	require.ErrorIs(t, ledger.Reserve(context.Background(), q, 1, 0), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.Reserve(context.Background(), q, 1, -2), ErrInvalidQuantity)
	require.Equal(t, 3, q.products[1].stock)

	var inactive *InactiveError
	require.ErrorAs(t, ledger.Reserve(context.Background(), q, 2, 1), &inactive)
	require.Equal(t, 9, q.products[2].stock)

	var notFound *NotFoundError
	require.ErrorAs(t, ledger.Reserve(context.Background(), q, 99, 1), &notFound)
}

func TestReleaseRestoresStock(t *testing.T) {
	q := newFakeQuerier()
	q.products[1] = &fakeProduct{stock: 2, active: true}
	var ledger Ledger

	require.NoError(t, ledger.Release(context.Background(), q, 1, 3))
	require.Equal(t, 5, q.products[1].stock)

	var notFound *NotFoundError
	require.ErrorAs(t, ledger.Release(context.Background(), q, 42, 1), &notFound)
}

func TestSetStock(t *testing.T) {
	q := newFakeQuerier()
	q.products[1] = &fakeProduct{stock: 2, active: true}
	var ledger Ledger

	require.NoError(t, ledger.SetStock(context.Background(), q, 1, 20))
	require.Equal(t, 20, q.products[1].stock)
	require.ErrorIs(t, ledger.SetStock(context.Background(), q, 1, -1), ErrNegativeStock)

	stock, active, err := ledger.Stock(context.Background(), q, 1)
	require.NoError(t, err)
	require.Equal(t, 20, stock)
	require.True(t, active)
}
