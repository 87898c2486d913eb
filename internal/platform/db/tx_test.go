package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type recordingBeginner struct {
	opts pgx.TxOptions
	tx   *recordingTx
}

func (b *recordingBeginner) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	b.tx = &recordingTx{}
	return b.tx, nil
}

type recordingTx struct {
	committed  bool
	rolledBack bool
}

func (t *recordingTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }

func (t *recordingTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *recordingTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *recordingTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *recordingTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *recordingTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *recordingTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *recordingTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *recordingTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *recordingTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (t *recordingTx) Conn() *pgx.Conn                                         { return nil }

// Guarded single-statement updates re-check their WHERE clause after a lock
// wait under read committed, so a concurrent-stock loser sees zero rows
// instead of a serialization abort. The helper must not ask for a snapshot
// isolation level that would turn that race into SQLSTATE 40001.
func TestWithTxRunsReadCommitted(t *testing.T) {
	beginner := &recordingBeginner{}

	err := WithTx(context.Background(), beginner, func(pgx.Tx) error { return nil })
	require.NoError(t, err)

	require.Equal(t, pgx.ReadCommitted, beginner.opts.IsoLevel)
	require.True(t, beginner.tx.committed)
	require.False(t, beginner.tx.rolledBack)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	beginner := &recordingBeginner{}
	boom := errors.New("boom")

	err := WithTx(context.Background(), beginner, func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)

	require.False(t, beginner.tx.committed)
	require.True(t, beginner.tx.rolledBack)
}
