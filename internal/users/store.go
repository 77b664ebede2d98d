// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import "context"

// Repository defines the data access contract for accounts.
type Repository interface {
	// FindByID returns the user with the given id, or NOT_FOUND.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns the user with the given email, or NOT_FOUND.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts a user. A concurrent insert of the same email returns
	// the row that won.
	Create(ctx context.Context, email, passwordHash string) (*User, error)

	// Exists reports whether a user row backs id.
	Exists(ctx context.Context, id int64) (bool, error)
}
