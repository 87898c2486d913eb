package sales

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-pos/meridian-pos/internal/inventory"
	_ "github.com/meridian-pos/meridian-pos/testing"
)

type memoryProduct struct {
	snapshot ProductSnapshot
	stock    int
}

// memorySaleRepo emulates the store including transactional rollback: the
// callback runs against a copy of the stock map and only a successful
// return publishes it.
type memorySaleRepo struct {
	mu       sync.Mutex
	products map[int64]*memoryProduct
	sales    map[int64]Sale
	items    map[int64][]SaleItem
	nextID   int64
}

func newMemorySaleRepo() *memorySaleRepo {
	return &memorySaleRepo{
		products: make(map[int64]*memoryProduct),
		sales:    make(map[int64]Sale),
		items:    make(map[int64][]SaleItem),
	}
}

func (r *memorySaleRepo) addProduct(id int64, name string, price float64, stock int, active bool) {
	r.products[id] = &memoryProduct{
		snapshot: ProductSnapshot{ID: id, Name: name, Price: price, Active: active},
		stock:    stock,
	}
}

func (r *memorySaleRepo) stockOf(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].stock
}

func (r *memorySaleRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[int64]int, len(r.products))
	for id, p := range r.products {
		staged[id] = p.stock
	}
	tx := &memorySaleTx{repo: r, staged: staged}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, stock := range staged {
		r.products[id].stock = stock
	}
	for id, sale := range tx.sales {
		r.sales[id] = sale
	}
	for id, items := range tx.items {
		r.items[id] = items
	}
	return nil
}

func (r *memorySaleRepo) Get(ctx context.Context, id int64) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sale, ok := r.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	sale.Items = append([]SaleItem(nil), r.items[id]...)
	return &sale, nil
}

func (r *memorySaleRepo) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sale
	for _, sale := range r.sales {
		if req.CustomerID != nil && (sale.CustomerID == nil || *sale.CustomerID != *req.CustomerID) {
			continue
		}
		if req.CashierID != nil && sale.CashierID != *req.CashierID {
			continue
		}
		out = append(out, sale)
	}
	return out, len(out), nil
}

type memorySaleTx struct {
	repo   *memorySaleRepo
	staged map[int64]int
	sales  map[int64]Sale
	items  map[int64][]SaleItem
}

func (t *memorySaleTx) GetProductForSale(ctx context.Context, productID int64) (*ProductSnapshot, error) {
	p, ok := t.repo.products[productID]
	if !ok {
		return nil, &ProductNotFoundError{ProductID: productID}
	}
	snap := p.snapshot
	return &snap, nil
}

func (t *memorySaleTx) ReserveStock(ctx context.Context, productID int64, qty int) error {
	if qty <= 0 {
		return inventory.ErrInvalidQuantity
	}
	available, ok := t.staged[productID]
	if !ok {
		return &inventory.NotFoundError{ProductID: productID}
	}
	if available < qty {
		return &inventory.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}
	t.staged[productID] = available - qty
	return nil
}

func (t *memorySaleTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	t.repo.nextID++
	sale.ID = t.repo.nextID
	if t.sales == nil {
		t.sales = make(map[int64]Sale)
	}
	t.sales[sale.ID] = sale
	return sale.ID, nil
}

func (t *memorySaleTx) InsertItems(ctx context.Context, saleID int64, items []SaleItem) error {
	if t.items == nil {
		t.items = make(map[int64][]SaleItem)
	}
	for i := range items {
		items[i].SaleID = saleID
	}
	t.items[saleID] = items
	return nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) InvalidateCache(ctx context.Context) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func newTestService(repo *memorySaleRepo) (*Service, *countingInvalidator) {
	cache := &countingInvalidator{}
	svc := NewService(repo, cache, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, cache
}

func ptrFloat(v float64) *float64 { return &v }

func TestProcessSaleCashCommit(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Sparkling Water", 1.50, 10, true)
	repo.addProduct(2, "Chips", 1.95, 4, true)
	svc, cache := newTestService(repo)

	receipt, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines: []CartLine{
			{ProductID: 1, Quantity: 5},
			{ProductID: 2, Quantity: 2},
		},
		PaymentMethod: PaymentCash,
		CashReceived:  ptrFloat(15.00),
		CashierID:     7,
	})
	require.NoError(t, err)
	require.InDelta(t, 11.40, receipt.Total, 1e-9)
	require.InDelta(t, 3.60, receipt.Change, 1e-9)
	require.NotEmpty(t, receipt.Code)

	require.Equal(t, 5, repo.stockOf(1))
	require.Equal(t, 2, repo.stockOf(2))
	require.Equal(t, 1, cache.calls)

	sale, err := svc.Get(context.Background(), receipt.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Items, 2)
	require.InDelta(t, 1.50, sale.Items[0].UnitPrice, 1e-9)
	require.InDelta(t, 7.50, sale.Items[0].Subtotal, 1e-9)
	require.Equal(t, int64(7), sale.CashierID)
}

func TestProcessSaleCardDropsSubmittedCash(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Sparkling Water", 1.50, 10, true)
	svc, _ := newTestService(repo)

	receipt, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines:         []CartLine{{ProductID: 1, Quantity: 2}},
		PaymentMethod: PaymentCard,
		CashReceived:  ptrFloat(20.00),
		CashierID:     7,
	})
	require.NoError(t, err)
	require.InDelta(t, 0, receipt.Change, 1e-9)

	sale, err := svc.Get(context.Background(), receipt.SaleID)
	require.NoError(t, err)
	require.Nil(t, sale.CashReceived)
	require.InDelta(t, 0, sale.Change, 1e-9)
}

func TestProcessSaleInsufficientCashRollsBack(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Notebook", 3.40, 6, true)
	svc, cache := newTestService(repo)

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines:         []CartLine{{ProductID: 1, Quantity: 3}},
		PaymentMethod: PaymentCash,
		CashReceived:  ptrFloat(10.00),
		CashierID:     1,
	})
	require.ErrorIs(t, err, ErrInsufficientPayment)
	require.Equal(t, 6, repo.stockOf(1))
	require.Zero(t, cache.calls)
}

func TestProcessSaleUnderStockedLineAbortsWholeCart(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Pen", 0.60, 100, true)
	repo.addProduct(2, "Soap", 2.10, 1, true)
	svc, _ := newTestService(repo)

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines: []CartLine{
			{ProductID: 1, Quantity: 10},
			{ProductID: 2, Quantity: 3},
		},
		PaymentMethod: PaymentCard,
		CashierID:     1,
	})

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(2), stockErr.ProductID)
	require.Equal(t, 3, stockErr.Requested)
	require.Equal(t, 1, stockErr.Available)

	// the passing line must not keep its reservation
	require.Equal(t, 100, repo.stockOf(1))
	require.Equal(t, 1, repo.stockOf(2))
}

func TestProcessSaleAggregatesDuplicateLines(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Cola", 2.75, 5, true)
	svc, _ := newTestService(repo)

	// 3+3 aggregated to 6 must fail against stock 5, even though each
	// line alone would pass.
	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines: []CartLine{
			{ProductID: 1, Quantity: 3},
			{ProductID: 1, Quantity: 3},
		},
		PaymentMethod: PaymentCard,
		CashierID:     1,
	})
	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 6, stockErr.Requested)
	require.Equal(t, 5, repo.stockOf(1))
}

func TestProcessSaleInactiveProduct(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Retired", 9.99, 50, false)
	svc, _ := newTestService(repo)

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines:         []CartLine{{ProductID: 1, Quantity: 1}},
		PaymentMethod: PaymentCard,
		CashierID:     1,
	})
	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, int64(1), notFound.ProductID)
	require.Equal(t, 50, repo.stockOf(1))
}

func TestProcessSaleValidationBeforeStore(t *testing.T) {
	svc, cache := newTestService(newMemorySaleRepo())

	_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
		PaymentMethod: PaymentCash,
	})
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines:         []CartLine{{ProductID: 1, Quantity: 0}},
		PaymentMethod: PaymentCash,
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.ProcessSale(context.Background(), ProcessSaleInput{
		Lines:         []CartLine{{ProductID: 1, Quantity: 1}},
		PaymentMethod: PaymentMethod("barter"),
	})
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)

	require.Zero(t, cache.calls)
}

func TestProcessSaleConcurrentContention(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Last Units", 4.00, 5, true)
	svc, _ := newTestService(repo)

	var g errgroup.Group
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		g.Go(func() error {
			_, err := svc.ProcessSale(context.Background(), ProcessSaleInput{
				Lines:         []CartLine{{ProductID: 1, Quantity: 5}},
				PaymentMethod: PaymentCard,
				CashierID:     int64(i + 1),
			})
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, outOfStock int
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		var stockErr *inventory.InsufficientStockError
		if errors.As(err, &stockErr) {
			outOfStock++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, outOfStock)
	require.Equal(t, 0, repo.stockOf(1))
}

func TestProcessSaleFreshCodePerSale(t *testing.T) {
	repo := newMemorySaleRepo()
	repo.addProduct(1, "Water", 1.50, 10, true)
	svc, _ := newTestService(repo)

	input := ProcessSaleInput{
		Lines:         []CartLine{{ProductID: 1, Quantity: 1}},
		PaymentMethod: PaymentCard,
		CashierID:     1,
	}
	first, err := svc.ProcessSale(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.ProcessSale(context.Background(), input)
	require.NoError(t, err)

	// resubmitting the same cart is a second sale, not a replay
	require.NotEqual(t, first.SaleID, second.SaleID)
	require.NotEqual(t, first.Code, second.Code)
	require.Equal(t, 8, repo.stockOf(1))
}

func TestAggregateLinesKeepsFirstOccurrenceOrder(t *testing.T) {
	merged := aggregateLines([]CartLine{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 4},
	})
	require.Equal(t, []CartLine{
		{ProductID: 3, Quantity: 5},
		{ProductID: 1, Quantity: 2},
	}, merged)
}
