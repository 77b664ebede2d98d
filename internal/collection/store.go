// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import (
	"context"

	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
)

const (
	// CategoryReadLimit caps the categories returned by a favourites read.
	// Writes are not capped.
	CategoryReadLimit = 10

	// CollectionChunkSize bounds rows per upsert statement for every collection table.
	CollectionChunkSize = 200
)

// Repository defines the data access contract for per-user collections.
//
// Every method takes an explicit [postgres.Querier] so the reconciler can
// run writes in its sync transaction and reads in a read-only snapshot.
type Repository interface {
	// GetFavouritesSnapshot returns categories, favourites (with manga and
	// tags) and the favourites cursor of a user.
	//
	// A user without categories gets an empty snapshot stamped with the
	// current time. A cursor that was never set (NULL or 0) also reads as
	// the current time.
	GetFavouritesSnapshot(ctx context.Context, querier postgres.Querier, userID int64) (*FavouritesSnapshot, error)

	// GetHistorySnapshot returns history entries (with manga and tags) and
	// the history cursor of a user, with the same cursor rule.
	GetHistorySnapshot(ctx context.Context, querier postgres.Querier, userID int64) (*HistorySnapshot, error)

	// UpsertCategories overwrites categories by (category_id, user_id).
	UpsertCategories(ctx context.Context, querier postgres.Querier, userID int64, categories []Category) error

	// UpsertFavourites overwrites favourites by (manga_id, category_id, user_id).
	UpsertFavourites(ctx context.Context, querier postgres.Querier, userID int64, favourites []Favourite) error

	// UpsertHistory overwrites history entries by (manga_id, user_id).
	UpsertHistory(ctx context.Context, querier postgres.Querier, userID int64, history []History) error

	// AdvanceSyncTimestamp sets the cursor of kind to timestamp.
	AdvanceSyncTimestamp(ctx context.Context, querier postgres.Querier, userID int64, kind Kind, timestamp int64) error
}
