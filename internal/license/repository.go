package license

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/platform/db"
)

// Repository defines persistence for license records.
type Repository interface {
	GetActive(ctx context.Context) (*License, error)
	Activate(ctx context.Context, lic License) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetActive returns the single active license record.
func (r *PGRepository) GetActive(ctx context.Context) (*License, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, key, kind, issued_at, window_days, unlimited, activated_at
FROM licenses WHERE active ORDER BY id DESC LIMIT 1`)

	var lic License
	err := row.Scan(&lic.ID, &lic.Key, &lic.Kind, &lic.IssuedAt, &lic.WindowDays, &lic.Unlimited, &lic.ActivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoLicense
		}
		return nil, err
	}
	return &lic, nil
}

// Activate retires any active license and inserts the new one atomically.
func (r *PGRepository) Activate(ctx context.Context, lic License) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE licenses SET active = FALSE WHERE active`); err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.QueryRow(ctx, `INSERT INTO licenses (key, kind, issued_at, window_days, unlimited, activated_at, active)
VALUES ($1, $2, $3, $4, $5, $6, TRUE) RETURNING id`,
			lic.Key, lic.Kind, lic.IssuedAt, lic.WindowDays, lic.Unlimited, now).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

var _ Repository = (*PGRepository)(nil)
