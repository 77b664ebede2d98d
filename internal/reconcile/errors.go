// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"errors"

	"github.com/taibuivan/yomira-sync/internal/platform/apperr"
)

// # Failure Taxonomy
//
// Reconciler errors wrap exactly one of these sentinels; [ToAppError] maps
// them to responses at the HTTP boundary.

var (
	// ErrUserNotFound means the authenticated user id has no backing row.
	ErrUserNotFound = errors.New("sync: user not found")

	// ErrTransaction means the write phase failed and was rolled back.
	ErrTransaction = errors.New("sync: transaction failed")

	// ErrRead means a snapshot read failed. After a commit this is data that
	// is durable but could not be returned.
	ErrRead = errors.New("sync: snapshot read failed")

	// ErrCursor means the writes committed but the cursor did not advance.
	ErrCursor = errors.New("sync: cursor advance failed")
)

// ToAppError maps a reconciler error to its client-facing [apperr.AppError].
func ToAppError(err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return apperr.Unauthorized("User not found").WithCause(err)
	case errors.Is(err, ErrTransaction):
		return apperr.InternalCode("SYNC_TRANSACTION_FAILED", "Synchronization failed, nothing was saved", err)
	case errors.Is(err, ErrRead):
		return apperr.InternalCode("SYNC_READ_FAILED", "Could not read the synchronized collection", err)
	case errors.Is(err, ErrCursor):
		return apperr.InternalCode("SYNC_CURSOR_FAILED", "Synchronization saved but the sync time was not updated", err)
	}
	return err
}
