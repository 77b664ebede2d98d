// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upsert writes arbitrarily large row sets as bounded multi-row
INSERT ... ON CONFLICT statements.

Every bulk write of the sync server goes through [Exec]. Rows are split into
chunks of at most chunkSize, each chunk becomes one statement sharing the same
conflict clause, and chunks run sequentially on the given [Execer]. The first
failing chunk stops the loop and its error is returned wrapped with the table
and chunk position; when the Execer is a transaction the caller's rollback
discards every chunk written before it.

Usage:

	statement := upsert.Statement{
	    Table:    "tags",
	    Columns:  []string{"id", "title"},
	    Conflict: upsert.OnConflictUpdate([]string{"id"}, []string{"title"}),
	}
	_, err := upsert.Exec(ctx, tx, statement, 300, tags, func(tag Tag) []any {
	    return []any{tag.ID, tag.Title}
	})
*/
package upsert

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// MaxParameters is the PostgreSQL wire-protocol limit on bind parameters per statement.
const MaxParameters = 65535

// ErrInvalidStatement is returned for statements that can never execute.
var ErrInvalidStatement = errors.New("upsert: invalid statement")

// Execer is satisfied by pgx.Tx, *pgxpool.Pool and [postgres.Querier].
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Statement describes the target of a multi-row insert.
type Statement struct {
	// Table is the (optionally schema-qualified) table name.
	Table string
	// Columns lists the inserted columns; every row supplies values in this order.
	Columns []string
	// Conflict is the full ON CONFLICT clause appended to every chunk.
	Conflict string
}

// Result reports what [Exec] did.
type Result struct {
	Statements   int
	RowsAffected int64
}

// OnConflictUpdate renders a clause overwriting every column in update
// when a row collides on keys (last writer wins).
func OnConflictUpdate(keys []string, update []string) string {
	assignments := make([]string, 0, len(update))
	for _, column := range update {
		assignments = append(assignments, column+" = EXCLUDED."+column)
	}

	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(keys, ", "), strings.Join(assignments, ", "))
}

// OnConflictIgnore renders a clause that keeps the existing row on collision.
func OnConflictIgnore(keys []string) string {
	return fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(keys, ", "))
}

// NonKey returns columns minus keys, preserving order.
func NonKey(columns []string, keys []string) []string {
	isKey := make(map[string]bool, len(keys))
	for _, key := range keys {
		isKey[key] = true
	}

	rest := make([]string, 0, len(columns))
	for _, column := range columns {
		if !isKey[column] {
			rest = append(rest, column)
		}
	}
	return rest
}

// SQL renders the statement for rowCount rows with numbered placeholders.
func (statement Statement) SQL(rowCount int) string {
	width := len(statement.Columns)

	var builder strings.Builder
	builder.Grow(64 + rowCount*width*6 + len(statement.Conflict))

	builder.WriteString("INSERT INTO ")
	builder.WriteString(statement.Table)
	builder.WriteString(" (")
	builder.WriteString(strings.Join(statement.Columns, ", "))
	builder.WriteString(") VALUES ")

	for row := 0; row < rowCount; row++ {
		if row > 0 {
			builder.WriteString(", ")
		}
		builder.WriteByte('(')
		for column := 0; column < width; column++ {
			if column > 0 {
				builder.WriteString(", ")
			}
			builder.WriteByte('$')
			builder.WriteString(strconv.Itoa(row*width + column + 1))
		}
		builder.WriteByte(')')
	}

	if statement.Conflict != "" {
		builder.WriteByte(' ')
		builder.WriteString(statement.Conflict)
	}

	return builder.String()
}

// Chunks splits rows into consecutive slices of at most size elements.
// The returned slices share rows' backing array.
func Chunks[T any](rows []T, size int) [][]T {
	if size < 1 || len(rows) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

/*
Exec writes rows in ceil(len(rows)/chunkSize) statements.

Parameters:
  - ctx: context.Context
  - execer: Execer (normally the sync transaction)
  - statement: Statement (target table, columns, conflict clause)
  - chunkSize: int (maximum rows per statement)
  - rows: []T
  - values: func(T) []any (column values in statement.Columns order)

Returns:
  - Result: statements executed and rows affected
  - error: the first failure, wrapped with table and chunk position
*/
func Exec[T any](ctx context.Context, execer Execer, statement Statement, chunkSize int, rows []T, values func(T) []any) (Result, error) {
	var result Result

	width := len(statement.Columns)
	if statement.Table == "" || width == 0 || chunkSize < 1 {
		return result, fmt.Errorf("%w: table %q, %d columns, chunk size %d", ErrInvalidStatement, statement.Table, width, chunkSize)
	}
	if chunkSize*width > MaxParameters {
		return result, fmt.Errorf("%w: %s chunk of %d rows needs %d parameters (max %d)",
			ErrInvalidStatement, statement.Table, chunkSize, chunkSize*width, MaxParameters)
	}

	chunks := Chunks(rows, chunkSize)
	for index, chunk := range chunks {
		arguments := make([]any, 0, len(chunk)*width)
		for _, row := range chunk {
			rowValues := values(row)
			if len(rowValues) != width {
				return result, fmt.Errorf("%w: %s row has %d values for %d columns",
					ErrInvalidStatement, statement.Table, len(rowValues), width)
			}
			arguments = append(arguments, rowValues...)
		}

		tag, err := execer.Exec(ctx, statement.SQL(len(chunk)), arguments...)
		if err != nil {
			return result, fmt.Errorf("upsert %s: chunk %d/%d: %w", statement.Table, index+1, len(chunks), err)
		}

		result.Statements++
		result.RowsAffected += tag.RowsAffected()
	}

	return result, nil
}
