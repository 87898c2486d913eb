package sales

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

// CacheInvalidator flushes cached catalog projections after stock changes.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// Service is the sale transaction coordinator. It holds no long-lived
// state: every call starts and ends within one request and one store
// transaction, so it is safe for concurrent callers.
type Service struct {
	repo   Repository
	cache  CacheInvalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds Service.
func NewService(repo Repository, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// ProcessSale commits one sale atomically: stock verification, pricing,
// header and line persistence, and stock decrement all happen inside a
// single transaction. On any failure nothing is committed and the store is
// left exactly as it was.
//
// Duplicate product ids in the cart are aggregated per product before
// reservation, so two lines cannot each pass a stock check their combined
// quantity would fail.
func (s *Service) ProcessSale(ctx context.Context, input ProcessSaleInput) (*Receipt, error) {
	if len(input.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	lines := aggregateLines(input.Lines)

	var receipt Receipt
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var items []SaleItem
		var total float64

		for _, line := range lines {
			snap, err := tx.GetProductForSale(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if !snap.Active {
				return &ProductNotFoundError{ProductID: line.ProductID}
			}
			if err := tx.ReserveStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}

			subtotal := round2(snap.Price * float64(line.Quantity))
			total = round2(total + subtotal)
			items = append(items, SaleItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: snap.Price,
				Subtotal:  subtotal,
			})
		}

		// Received cash only means something for cash payments; a value
		// submitted alongside card or credit is dropped, not stored.
		var change float64
		cashReceived := input.CashReceived
		if input.PaymentMethod == PaymentCash {
			received := 0.0
			if cashReceived != nil {
				received = *cashReceived
			}
			if received < total {
				return ErrInsufficientPayment
			}
			change = round2(received - total)
		} else {
			cashReceived = nil
		}

		sale := Sale{
			Code:          uuid.NewString(),
			SoldAt:        s.now().UTC(),
			Total:         total,
			PaymentMethod: input.PaymentMethod,
			CashReceived:  cashReceived,
			Change:        change,
			CustomerID:    input.CustomerID,
			CashierID:     input.CashierID,
		}
		saleID, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if err := tx.InsertItems(ctx, saleID, items); err != nil {
			return fmt.Errorf("insert sale items: %w", err)
		}

		receipt = Receipt{SaleID: saleID, Code: sale.Code, Total: total, Change: change}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateCache(ctx)
	}
	s.logger.Info("sale committed",
		slog.Int64("sale_id", receipt.SaleID),
		slog.Float64("total", receipt.Total),
		slog.String("payment_method", string(input.PaymentMethod)),
		slog.Int64("cashier_id", input.CashierID))
	return &receipt, nil
}

// Get fetches a committed sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns the sale history.
func (s *Service) List(ctx context.Context, req ListSalesRequest) ([]Sale, int, error) {
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return s.repo.List(ctx, req)
}

// aggregateLines merges duplicate product ids, keeping first-occurrence
// order so error reporting follows the submitted cart.
func aggregateLines(lines []CartLine) []CartLine {
	index := make(map[int64]int, len(lines))
	var merged []CartLine
	for _, line := range lines {
		if pos, ok := index[line.ProductID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
