// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-sync/internal/platform/database/schema"
	"github.com/taibuivan/yomira-sync/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func selectUser(where string) string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.UserAccount.Columns(), ", "), schema.UserAccount.Table, where)
}

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	if err := row.Scan(&user.ID, &user.Email, &user.Nickname, &user.PasswordHash); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID retrieves a user by primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*User, error) {
	user, err := scanUser(repository.pool.QueryRow(context, selectUser(schema.UserAccount.ID), id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_id", "User")
	}
	return user, nil
}

// FindByEmail retrieves a user by email.
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*User, error) {
	user, err := scanUser(repository.pool.QueryRow(context, selectUser(schema.UserAccount.Email), email))
	if err != nil {
		return nil, dberr.Wrap(err, "find_user_by_email", "User")
	}
	return user, nil
}

/*
Create inserts a new account.

Description: The insert ignores an email collision; when another request
created the same email first, that row is read and returned instead.

Parameters:
  - context: context.Context
  - email: string
  - passwordHash: string (bcrypt)

Returns:
  - *User: the stored account
  - error: INTERNAL_ERROR on database failure
*/
func (repository *PostgresRepository) Create(context context.Context, email, passwordHash string) (*User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT (%s) DO NOTHING
		RETURNING %s, %s, %s, %s`,
		schema.UserAccount.Table, schema.UserAccount.Email, schema.UserAccount.Password,
		schema.UserAccount.Email,
		schema.UserAccount.ID, schema.UserAccount.Email, schema.UserAccount.Nickname, schema.UserAccount.Password,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, email, passwordHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.FindByEmail(context, email)
	}
	if err != nil {
		return nil, dberr.Wrap(err, "create_user", "User")
	}
	return user, nil
}

// Exists reports whether a user row backs id.
func (repository *PostgresRepository) Exists(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.UserAccount.Table, schema.UserAccount.ID)

	var exists bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "user_exists", "User")
	}
	return exists, nil
}
