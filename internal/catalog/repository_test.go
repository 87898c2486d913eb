package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// fakeCatalogStore answers the repository's barcode lookup against an
// in-memory slice, honoring the active guard the way the products table
// would: rows are matched in insertion order and skipped when the statement
// filters on active.
type fakeCatalogStore struct {
	products []Product
}

func (f *fakeCatalogStore) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeCatalogStore) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unexpected query")
}

func (f *fakeCatalogStore) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "barcode = $1") {
		barcode := args[0].(string)
		for _, p := range f.products {
			if p.Barcode == nil || *p.Barcode != barcode {
				continue
			}
			if strings.Contains(sql, "AND active") && !p.IsActive {
				continue
			}
			return productRow{p: p}
		}
		return errRow{err: pgx.ErrNoRows}
	}
	return errRow{err: fmt.Errorf("unexpected sql: %s", sql)}
}

type productRow struct {
	p Product
}

func (r productRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.p.ID
	*dest[1].(*string) = r.p.Name
	*dest[2].(*float64) = r.p.Price
	*dest[3].(*float64) = r.p.CostPrice
	*dest[4].(*int) = r.p.Stock
	*dest[5].(*bool) = r.p.IsActive
	*dest[6].(*string) = r.p.Category
	*dest[7].(**string) = r.p.Barcode
	*dest[8].(**string) = r.p.Description
	*dest[9].(*time.Time) = r.p.CreatedAt
	*dest[10].(*time.Time) = r.p.UpdatedAt
	return nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }

func strPtr(s string) *string { return &s }

// A deactivated product may share its barcode with the active product that
// replaced it. Scanning that barcode at the register must resolve to the
// active row, never the retired one.
func TestGetByBarcodeSkipsRetiredProduct(t *testing.T) {
	store := &fakeCatalogStore{products: []Product{
		{ID: 1, Name: "Cola 600ml (old)", Barcode: strPtr("7501"), IsActive: false, Price: 1.20},
		{ID: 2, Name: "Cola 600ml", Barcode: strPtr("7501"), IsActive: true, Price: 1.50},
	}}
	repo := NewRepository(store)

	p, err := repo.GetByBarcode(context.Background(), "7501")
	require.NoError(t, err)
	require.Equal(t, int64(2), p.ID)
	require.True(t, p.IsActive)
}

func TestGetByBarcodeRetiredOnlyIsNotFound(t *testing.T) {
	store := &fakeCatalogStore{products: []Product{
		{ID: 1, Name: "Discontinued bar", Barcode: strPtr("9900"), IsActive: false},
	}}
	repo := NewRepository(store)

	_, err := repo.GetByBarcode(context.Background(), "9900")
	require.ErrorIs(t, err, ErrNotFound)
}
