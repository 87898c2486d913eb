package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for customers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches a customer by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, phone, email, address, registered_at
FROM customers WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns customers matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(lower(name) LIKE $%d OR phone = $%d)", argPos, argPos+1))
		args = append(args, "%"+strings.ToLower(*req.Search)+"%", *req.Search)
		argPos += 2
	}
	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT id, name, phone, email, address, registered_at
FROM customers %s ORDER BY name, id LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.RegisteredAt); err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, total, rows.Err()
}

// Create inserts a customer and returns its id.
func (r *Repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (name, phone, email, address)
VALUES ($1, $2, $3, $4) RETURNING id`, c.Name, c.Phone, c.Email, c.Address).Scan(&id)
	return id, err
}

// Update applies the given column updates to a customer.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE customers SET id = id"
	var args []interface{}
	argPos := 1
	for _, col := range []string{"name", "phone", "email", "address"} {
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
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
