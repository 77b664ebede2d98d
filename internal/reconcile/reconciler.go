// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reconcile merges client collection snapshots into durable state.

A sync call moves through fixed stages:

	lookup user -> extract catalog -> write tags, manga, links, collection rows
	-> commit -> read snapshot -> advance cursor -> compare

Every write runs in one transaction; any failure rolls the whole call back.
The response is always read back from the database after the commit, never
echoed from the request.
*/
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/taibuivan/yomira-sync/internal/catalog"
	"github.com/taibuivan/yomira-sync/internal/collection"
	"github.com/taibuivan/yomira-sync/internal/platform/config"
	"github.com/taibuivan/yomira-sync/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
	"github.com/taibuivan/yomira-sync/pkg/slice"
)

// # Collaborators

// UserDirectory confirms that an authenticated user id has a backing row.
type UserDirectory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

// CatalogWriter is the subset of [catalog.Repository] used during a sync.
type CatalogWriter interface {
	UpsertTags(ctx context.Context, querier postgres.Querier, tags []catalog.Tag) error
	UpsertManga(ctx context.Context, querier postgres.Querier, manga []catalog.Manga) error
	LinkMangaTags(ctx context.Context, querier postgres.Querier, links []catalog.Link) error
}

// SnapshotCache stores fetched snapshots by user id, scoped by a generation
// that Invalidate advances. Implemented by redis.JSONCache.
type SnapshotCache interface {
	Generation(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string, generation int64, target any) (bool, error)
	Set(ctx context.Context, key string, generation int64, value any) error
	Invalidate(ctx context.Context, key string) error
}

// Options tunes a [Reconciler]. The zero value uses the legacy cursor policy
// and no cache.
type Options struct {
	// CursorPolicy is config.CursorPolicyLegacy or config.CursorPolicyServer.
	CursorPolicy string

	FavouritesCache SnapshotCache
	HistoryCache    SnapshotCache
}

// # Reconciler

// Reconciler runs favourites and history synchronization.
type Reconciler struct {
	transactor      postgres.Transactor
	users           UserDirectory
	catalog         CatalogWriter
	collections     collection.Repository
	favouritesCache SnapshotCache
	historyCache    SnapshotCache
	cursorPolicy    string
	now             func() time.Time
}

// New constructs a [Reconciler].
func New(transactor postgres.Transactor, users UserDirectory, catalogWriter CatalogWriter, collections collection.Repository, options Options) *Reconciler {
	reconciler := &Reconciler{
		transactor:      transactor,
		users:           users,
		catalog:         catalogWriter,
		collections:     collections,
		favouritesCache: options.FavouritesCache,
		historyCache:    options.HistoryCache,
		cursorPolicy:    options.CursorPolicy,
		now:             time.Now,
	}

	if reconciler.cursorPolicy == "" {
		reconciler.cursorPolicy = config.CursorPolicyLegacy
	}
	if reconciler.favouritesCache == nil {
		reconciler.favouritesCache = noCache{}
	}
	if reconciler.historyCache == nil {
		reconciler.historyCache = noCache{}
	}

	return reconciler
}

// # Synchronization

/*
SyncFavourites merges a favourites snapshot for userID.

Description: Catalog rows referenced by the favourites are written first so
the foreign keys of links and favourites hold. After the commit the snapshot
is read back and the favourites cursor advances (to the submitted timestamp
under the legacy policy, to server time otherwise). The sync reports a change
when the read-back rows differ from the submission or from the rows held
before the write; cursors are not compared.

Parameters:
  - context: context.Context
  - userID: int64 (from the verified token)
  - incoming: collection.FavouritesSnapshot

Returns:
  - *collection.FavouritesSnapshot: the durable state, timestamp set to the new cursor
  - bool: false when the submission neither changed nor differs from the durable rows
  - error: wraps ErrUserNotFound, ErrTransaction, ErrRead or ErrCursor
*/
func (reconciler *Reconciler) SyncFavourites(context context.Context, userID int64, incoming collection.FavouritesSnapshot) (*collection.FavouritesSnapshot, bool, error) {
	started := reconciler.now()
	logger := ctxutil.SyncLogger(context, userID, string(collection.KindFavourites))

	if err := reconciler.confirmUser(context, userID); err != nil {
		logAborted(context, logger, "lookup_user", err)
		return nil, false, err
	}

	categories, favourites := distinctFavourites(incoming)
	batch := extractCatalog(slice.Map(favourites, collection.Favourite.CatalogManga))

	var previous *collection.FavouritesSnapshot
	err := reconciler.transactor.WithinTx(context, func(querier postgres.Querier) error {
		var err error
		if previous, err = reconciler.collections.GetFavouritesSnapshot(context, querier, userID); err != nil {
			return fmt.Errorf("read previous favourites: %w", err)
		}
		if err := reconciler.writeCatalog(context, querier, batch); err != nil {
			return err
		}
		if err := reconciler.collections.UpsertCategories(context, querier, userID, categories); err != nil {
			return fmt.Errorf("write categories: %w", err)
		}
		if err := reconciler.collections.UpsertFavourites(context, querier, userID, favourites); err != nil {
			return fmt.Errorf("write favourites: %w", err)
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransaction, err)
		logAborted(context, logger, "write", err)
		return nil, false, err
	}

	defer reconciler.invalidate(context, logger, reconciler.favouritesCache, userID)

	var merged *collection.FavouritesSnapshot
	err = reconciler.transactor.WithinReadTx(context, func(querier postgres.Querier) error {
		var readErr error
		merged, readErr = reconciler.collections.GetFavouritesSnapshot(context, querier, userID)
		return readErr
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRead, err)
		logAborted(context, logger, "read", err)
		return nil, false, err
	}

	cursor := reconciler.favouritesCursor(incoming.Timestamp)
	if err := reconciler.advance(context, userID, collection.KindFavourites, cursor); err != nil {
		logAborted(context, logger, "advance_cursor", err)
		return nil, false, err
	}

	changed := !merged.Equal(incoming) || !merged.Equal(*previous)
	merged.Timestamp = cursor

	logger.InfoContext(context, "sync_completed",
		slog.Int("manga", len(batch.manga)),
		slog.Int("tags", len(batch.tags)),
		slog.Int("links", len(batch.links)),
		slog.Int("categories", len(categories)),
		slog.Int("rows", len(favourites)),
		slog.Bool("changed", changed),
		slog.Int64("cursor", cursor),
		slog.Duration("duration", reconciler.now().Sub(started)),
	)

	return merged, changed, nil
}

// SyncHistory merges a history snapshot for userID. It follows the shape of
// [Reconciler.SyncFavourites]; the history cursor always advances to server time.
func (reconciler *Reconciler) SyncHistory(context context.Context, userID int64, incoming collection.HistorySnapshot) (*collection.HistorySnapshot, bool, error) {
	started := reconciler.now()
	logger := ctxutil.SyncLogger(context, userID, string(collection.KindHistory))

	if err := reconciler.confirmUser(context, userID); err != nil {
		logAborted(context, logger, "lookup_user", err)
		return nil, false, err
	}

	history := distinctHistory(incoming)
	batch := extractCatalog(slice.Map(history, collection.History.CatalogManga))

	var previous *collection.HistorySnapshot
	err := reconciler.transactor.WithinTx(context, func(querier postgres.Querier) error {
		var err error
		if previous, err = reconciler.collections.GetHistorySnapshot(context, querier, userID); err != nil {
			return fmt.Errorf("read previous history: %w", err)
		}
		if err := reconciler.writeCatalog(context, querier, batch); err != nil {
			return err
		}
		if err := reconciler.collections.UpsertHistory(context, querier, userID, history); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		return nil
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransaction, err)
		logAborted(context, logger, "write", err)
		return nil, false, err
	}

	defer reconciler.invalidate(context, logger, reconciler.historyCache, userID)

	var merged *collection.HistorySnapshot
	err = reconciler.transactor.WithinReadTx(context, func(querier postgres.Querier) error {
		var readErr error
		merged, readErr = reconciler.collections.GetHistorySnapshot(context, querier, userID)
		return readErr
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRead, err)
		logAborted(context, logger, "read", err)
		return nil, false, err
	}

	cursor := reconciler.now().Unix()
	if err := reconciler.advance(context, userID, collection.KindHistory, cursor); err != nil {
		logAborted(context, logger, "advance_cursor", err)
		return nil, false, err
	}

	changed := !merged.Equal(incoming) || !merged.Equal(*previous)
	merged.Timestamp = cursor

	logger.InfoContext(context, "sync_completed",
		slog.Int("manga", len(batch.manga)),
		slog.Int("tags", len(batch.tags)),
		slog.Int("links", len(batch.links)),
		slog.Int("rows", len(history)),
		slog.Bool("changed", changed),
		slog.Int64("cursor", cursor),
		slog.Duration("duration", reconciler.now().Sub(started)),
	)

	return merged, changed, nil
}

// # Fetch

// GetFavourites returns the current favourites snapshot, from the cache when present.
func (reconciler *Reconciler) GetFavourites(context context.Context, userID int64) (*collection.FavouritesSnapshot, error) {
	return fetch(context, reconciler, reconciler.favouritesCache, userID, reconciler.collections.GetFavouritesSnapshot)
}

// GetHistory returns the current history snapshot, from the cache when present.
func (reconciler *Reconciler) GetHistory(context context.Context, userID int64) (*collection.HistorySnapshot, error) {
	return fetch(context, reconciler, reconciler.historyCache, userID, reconciler.collections.GetHistorySnapshot)
}

// fetch is a read-through over cache. The generation is taken before the
// database read, so a snapshot read before a concurrent sync is stored under
// a generation that sync has already retired. Cache failures degrade to a
// database read.
func fetch[S any](
	ctx context.Context,
	reconciler *Reconciler,
	cache SnapshotCache,
	userID int64,
	read func(context.Context, postgres.Querier, int64) (*S, error),
) (*S, error) {
	logger := ctxutil.GetLogger(ctx)
	key := strconv.FormatInt(userID, 10)

	generation, err := cache.Generation(ctx, key)
	useCache := err == nil
	if err != nil {
		logger.WarnContext(ctx, "snapshot_cache_generation_failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	if useCache {
		var cached S
		hit, err := cache.Get(ctx, key, generation, &cached)
		if err != nil {
			logger.WarnContext(ctx, "snapshot_cache_get_failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		if hit {
			return &cached, nil
		}
	}

	if err := reconciler.confirmUser(ctx, userID); err != nil {
		return nil, err
	}

	var snapshot *S
	err = reconciler.transactor.WithinReadTx(ctx, func(querier postgres.Querier) error {
		var readErr error
		snapshot, readErr = read(ctx, querier, userID)
		return readErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	if useCache {
		if err := cache.Set(ctx, key, generation, snapshot); err != nil {
			logger.WarnContext(ctx, "snapshot_cache_set_failed", slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}

	return snapshot, nil
}

// # Stages

func (reconciler *Reconciler) confirmUser(context context.Context, userID int64) error {
	exists, err := reconciler.users.Exists(context, userID)
	if err != nil {
		return fmt.Errorf("sync: lookup user %d: %w", userID, err)
	}
	if !exists {
		return fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
	}
	return nil
}

// writeCatalog writes tags, then manga, then links.
func (reconciler *Reconciler) writeCatalog(context context.Context, querier postgres.Querier, batch catalogBatch) error {
	if err := reconciler.catalog.UpsertTags(context, querier, batch.tags); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	if err := reconciler.catalog.UpsertManga(context, querier, batch.manga); err != nil {
		return fmt.Errorf("write manga: %w", err)
	}
	if err := reconciler.catalog.LinkMangaTags(context, querier, batch.links); err != nil {
		return fmt.Errorf("write manga tags: %w", err)
	}
	return nil
}

func (reconciler *Reconciler) favouritesCursor(submitted int64) int64 {
	if reconciler.cursorPolicy == config.CursorPolicyServer {
		return reconciler.now().Unix()
	}
	return submitted
}

func (reconciler *Reconciler) advance(context context.Context, userID int64, kind collection.Kind, cursor int64) error {
	err := reconciler.transactor.WithinTx(context, func(querier postgres.Querier) error {
		return reconciler.collections.AdvanceSyncTimestamp(context, querier, userID, kind, cursor)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCursor, err)
	}
	return nil
}

func (reconciler *Reconciler) invalidate(context context.Context, logger *slog.Logger, cache SnapshotCache, userID int64) {
	if err := cache.Invalidate(context, strconv.FormatInt(userID, 10)); err != nil {
		logger.WarnContext(context, "snapshot_cache_invalidate_failed", slog.Any("error", err))
	}
}

func logAborted(context context.Context, logger *slog.Logger, stage string, err error) {
	logger.ErrorContext(context, "sync_aborted", slog.String("stage", stage), slog.Any("error", err))
}

// noCache is used when no Redis URL is configured.
type noCache struct{}

func (noCache) Generation(context.Context, string) (int64, error)     { return 0, nil }
func (noCache) Get(context.Context, string, int64, any) (bool, error) { return false, nil }
func (noCache) Set(context.Context, string, int64, any) error         { return nil }
func (noCache) Invalidate(context.Context, string) error              { return nil }
