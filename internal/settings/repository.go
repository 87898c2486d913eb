package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads and writes the single settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (*Settings, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Get(ctx context.Context) (*Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `
		SELECT store_name, address, phone, tax_id, low_stock_threshold
		FROM settings WHERE id = 1`).
		Scan(&s.StoreName, &s.Address, &s.Phone, &s.TaxID, &s.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *PGRepository) Update(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	sql := "UPDATE settings SET id = id"
	args := []any{}
	argPos := 1
	if req.StoreName != nil {
		sql += fmt.Sprintf(", store_name = $%d", argPos)
		args = append(args, *req.StoreName)
		argPos++
	}
	if req.Address != nil {
		sql += fmt.Sprintf(", address = $%d", argPos)
		args = append(args, *req.Address)
		argPos++
	}
	if req.Phone != nil {
		sql += fmt.Sprintf(", phone = $%d", argPos)
		args = append(args, *req.Phone)
		argPos++
	}
	if req.TaxID != nil {
		sql += fmt.Sprintf(", tax_id = $%d", argPos)
		args = append(args, *req.TaxID)
		argPos++
	}
	if req.LowStockThreshold != nil {
		sql += fmt.Sprintf(", low_stock_threshold = $%d", argPos)
		args = append(args, *req.LowStockThreshold)
		argPos++
	}
	sql += " WHERE id = 1 RETURNING store_name, address, phone, tax_id, low_stock_threshold"

	var s Settings
	err := r.pool.QueryRow(ctx, sql, args...).
		Scan(&s.StoreName, &s.Address, &s.Phone, &s.TaxID, &s.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &s, nil
}
