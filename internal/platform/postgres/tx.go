// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor runs a function inside one database transaction.
type Transactor interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(q Querier) error) error

	// WithinReadTx runs fn in a read-only snapshot of the database.
	WithinReadTx(ctx context.Context, fn func(q Querier) error) error
}

// Isolation levels used by the sync server.
var (
	// WriteTxOptions is used for reconciliation writes. Concurrent syncs of the
	// same user interleave at row granularity; last commit wins per row.
	WriteTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

	// ReadTxOptions gives multi-query snapshot reads one consistent view.
	ReadTxOptions = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
)

// PoolTransactor implements [Transactor] on a pgx pool.
type PoolTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor wraps pool.
func NewTransactor(pool *pgxpool.Pool) *PoolTransactor {
	return &PoolTransactor{pool: pool}
}

// WithinTx implements [Transactor] with [WriteTxOptions].
func (transactor *PoolTransactor) WithinTx(ctx context.Context, fn func(q Querier) error) error {
	return transactor.run(ctx, WriteTxOptions, fn)
}

// WithinReadTx implements [Transactor] with [ReadTxOptions].
func (transactor *PoolTransactor) WithinReadTx(ctx context.Context, fn func(q Querier) error) error {
	return transactor.run(ctx, ReadTxOptions, fn)
}

func (transactor *PoolTransactor) run(ctx context.Context, options pgx.TxOptions, fn func(q Querier) error) error {
	transaction, err := transactor.pool.BeginTx(ctx, options)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}

	// Rollback after a successful Commit is a no-op (pgx.ErrTxClosed).
	defer func() { _ = transaction.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(transaction); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit transaction: %w", err)
	}

	return nil
}
