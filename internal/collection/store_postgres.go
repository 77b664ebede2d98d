// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/yomira-sync/internal/catalog"
	"github.com/taibuivan/yomira-sync/internal/platform/apperr"
	"github.com/taibuivan/yomira-sync/internal/platform/database/schema"
	"github.com/taibuivan/yomira-sync/internal/platform/dberr"
	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
	"github.com/taibuivan/yomira-sync/internal/platform/upsert"
	"github.com/taibuivan/yomira-sync/pkg/slice"
)

// TagReader loads tags for a set of manga. Implemented by catalog.PostgresRepository.
type TagReader interface {
	TagsByManga(ctx context.Context, querier postgres.Querier, mangaIDs []int64) (map[int64][]catalog.Tag, error)
}

// # Statements

var (
	categoryKeys = []string{schema.Category.ID, schema.Category.UserID}

	categoryStatement = upsert.Statement{
		Table:    schema.Category.Table,
		Columns:  schema.Category.Columns(),
		Conflict: upsert.OnConflictUpdate(categoryKeys, upsert.NonKey(schema.Category.Columns(), categoryKeys)),
	}

	favouriteKeys = []string{schema.Favourite.MangaID, schema.Favourite.CategoryID, schema.Favourite.UserID}

	favouriteStatement = upsert.Statement{
		Table:    schema.Favourite.Table,
		Columns:  schema.Favourite.Columns(),
		Conflict: upsert.OnConflictUpdate(favouriteKeys, upsert.NonKey(schema.Favourite.Columns(), favouriteKeys)),
	}

	historyKeys = []string{schema.History.MangaID, schema.History.UserID}

	historyStatement = upsert.Statement{
		Table:    schema.History.Table,
		Columns:  schema.History.Columns(),
		Conflict: upsert.OnConflictUpdate(historyKeys, upsert.NonKey(schema.History.Columns(), historyKeys)),
	}
)

// cursorColumns maps each collection to its cursor column on the user row.
var cursorColumns = map[Kind]string{
	KindFavourites: schema.UserAccount.FavouritesSyncTimestamp,
	KindHistory:    schema.UserAccount.HistorySyncTimestamp,
}

// # Repository

// PostgresRepository implements [Repository] on PostgreSQL.
type PostgresRepository struct {
	tags TagReader
	now  func() time.Time
}

// NewPostgresRepository constructs a [PostgresRepository] reading tags through tags.
func NewPostgresRepository(tags TagReader) *PostgresRepository {
	return &PostgresRepository{tags: tags, now: time.Now}
}

// # Writes

/*
UpsertCategories writes categories in chunks of [CollectionChunkSize].

Parameters:
  - context: context.Context
  - querier: postgres.Querier (the sync transaction)
  - userID: int64 (owner of every row)
  - categories: []Category (one row per category_id, last occurrence wins)

Returns:
  - error: the first failing chunk, wrapped as INTERNAL_ERROR
*/
func (repository *PostgresRepository) UpsertCategories(context context.Context, querier postgres.Querier, userID int64, categories []Category) error {
	rows := slice.Map(slice.DistinctBy(categories, func(category Category) int64 { return category.ID }), NormalizeCategory)

	_, err := upsert.Exec(context, querier, categoryStatement, CollectionChunkSize, rows, func(category Category) []any {
		return []any{
			category.ID, userID, category.CreatedAt, category.SortKey, category.Title,
			category.Order, category.Track != 0, category.ShowInLib != 0, category.DeletedAt,
		}
	})
	return dberr.Wrap(err, "upsert_categories", "Category")
}

// UpsertFavourites writes favourites in chunks of [CollectionChunkSize].
// The referenced manga must already exist.
func (repository *PostgresRepository) UpsertFavourites(context context.Context, querier postgres.Querier, userID int64, favourites []Favourite) error {
	type favouriteKey struct{ mangaID, categoryID int64 }
	rows := slice.DistinctBy(favourites, func(favourite Favourite) favouriteKey {
		return favouriteKey{favourite.MangaID, favourite.CategoryID}
	})

	_, err := upsert.Exec(context, querier, favouriteStatement, CollectionChunkSize, rows, func(favourite Favourite) []any {
		return []any{
			favourite.MangaID, favourite.CategoryID, userID,
			favourite.SortKey, favourite.CreatedAt, favourite.DeletedAt,
		}
	})
	return dberr.Wrap(err, "upsert_favourites", "Favourite")
}

// UpsertHistory writes history entries in chunks of [CollectionChunkSize].
func (repository *PostgresRepository) UpsertHistory(context context.Context, querier postgres.Querier, userID int64, history []History) error {
	rows := slice.DistinctBy(history, func(entry History) int64 { return entry.MangaID })

	_, err := upsert.Exec(context, querier, historyStatement, CollectionChunkSize, rows, func(entry History) []any {
		return []any{
			entry.MangaID, userID, entry.CreatedAt, entry.UpdatedAt, entry.ChapterID,
			entry.Page, entry.Scroll, entry.Percent, entry.Chapters, entry.DeletedAt,
		}
	})
	return dberr.Wrap(err, "upsert_history", "History")
}

// AdvanceSyncTimestamp stores timestamp as the user's cursor for kind.
func (repository *PostgresRepository) AdvanceSyncTimestamp(context context.Context, querier postgres.Querier, userID int64, kind Kind, timestamp int64) error {
	column, ok := cursorColumns[kind]
	if !ok {
		return apperr.Internal(fmt.Errorf("advance_sync_timestamp: unknown collection %q", kind))
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`, schema.UserAccount.Table, column, schema.UserAccount.ID)

	tag, err := querier.Exec(context, query, timestamp, userID)
	if err != nil {
		return dberr.Wrap(err, "advance_sync_timestamp", "User")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "advance_sync_timestamp", "User")
	}

	return nil
}

// # Reads

/*
GetFavouritesSnapshot assembles a user's favourites view.

Description: Categories are read first, ordered by id and capped at
[CategoryReadLimit]. No categories short-circuits to an empty snapshot.
Favourites are joined to their manga and ordered by (category_id, sort_key,
manga_id); tags are attached with one extra query.

Parameters:
  - context: context.Context
  - querier: postgres.Querier (normally a read-only snapshot transaction)
  - userID: int64

Returns:
  - *FavouritesSnapshot: never nil on success; lists are non-nil
  - error: NOT_FOUND when the user row is missing, INTERNAL_ERROR otherwise
*/
func (repository *PostgresRepository) GetFavouritesSnapshot(context context.Context, querier postgres.Querier, userID int64) (*FavouritesSnapshot, error) {
	categories, err := repository.listCategories(context, querier, userID)
	if err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		return &FavouritesSnapshot{
			Categories: []Category{},
			Favourites: []Favourite{},
			Timestamp:  repository.now().Unix(),
		}, nil
	}

	favourites, err := repository.listFavourites(context, querier, userID)
	if err != nil {
		return nil, err
	}

	timestamp, err := repository.cursor(context, querier, userID, KindFavourites)
	if err != nil {
		return nil, err
	}

	return &FavouritesSnapshot{Categories: categories, Favourites: favourites, Timestamp: timestamp}, nil
}

// GetHistorySnapshot assembles a user's history view, most recently updated first.
func (repository *PostgresRepository) GetHistorySnapshot(context context.Context, querier postgres.Querier, userID int64) (*HistorySnapshot, error) {
	history, err := repository.listHistory(context, querier, userID)
	if err != nil {
		return nil, err
	}

	timestamp, err := repository.cursor(context, querier, userID, KindHistory)
	if err != nil {
		return nil, err
	}

	return &HistorySnapshot{History: history, Timestamp: timestamp}, nil
}

func (repository *PostgresRepository) listCategories(context context.Context, querier postgres.Querier, userID int64) ([]Category, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s
		LIMIT %d
	`,
		schema.Category.ID, schema.Category.CreatedAt, schema.Category.SortKey, schema.Category.Title,
		schema.Category.Order, schema.Category.Track, schema.Category.ShowInLib, schema.Category.DeletedAt,
		schema.Category.Table,
		schema.Category.UserID,
		schema.Category.ID,
		CategoryReadLimit,
	)

	rows, err := querier.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_categories", "Category")
	}
	defer rows.Close()

	categories := make([]Category, 0, CategoryReadLimit)
	for rows.Next() {
		var category Category
		var track, showInLib bool
		if err := rows.Scan(
			&category.ID, &category.CreatedAt, &category.SortKey, &category.Title,
			&category.Order, &track, &showInLib, &category.DeletedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_category", "Category")
		}
		category.Track = flag(track)
		category.ShowInLib = flag(showInLib)
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_categories", "Category")
	}
	return categories, nil
}

func (repository *PostgresRepository) listFavourites(context context.Context, querier postgres.Querier, userID int64) ([]Favourite, error) {
	query := fmt.Sprintf(`
		SELECT f.%s, f.%s, f.%s, f.%s, f.%s, %s
		FROM %s f
		JOIN %s m ON m.%s = f.%s
		WHERE f.%s = $1
		ORDER BY f.%s, f.%s, f.%s
	`,
		schema.Favourite.MangaID, schema.Favourite.CategoryID, schema.Favourite.SortKey,
		schema.Favourite.CreatedAt, schema.Favourite.DeletedAt, catalog.SelectColumns("m"),
		schema.Favourite.Table,
		schema.Manga.Table, schema.Manga.ID, schema.Favourite.MangaID,
		schema.Favourite.UserID,
		schema.Favourite.CategoryID, schema.Favourite.SortKey, schema.Favourite.MangaID,
	)

	rows, err := querier.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_favourites", "Favourite")
	}
	defer rows.Close()

	favourites := make([]Favourite, 0)
	for rows.Next() {
		var favourite Favourite
		var record catalog.Record
		targets := append([]any{
			&favourite.MangaID, &favourite.CategoryID, &favourite.SortKey,
			&favourite.CreatedAt, &favourite.DeletedAt,
		}, record.Targets()...)

		if err := rows.Scan(targets...); err != nil {
			return nil, dberr.Wrap(err, "scan_favourite", "Favourite")
		}
		favourite.Manga = record.Manga()
		favourites = append(favourites, favourite)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_favourites", "Favourite")
	}
	rows.Close()

	ids := slice.Map(favourites, func(favourite Favourite) int64 { return favourite.MangaID })
	tags, err := repository.tags.TagsByManga(context, querier, ids)
	if err != nil {
		return nil, err
	}
	for index := range favourites {
		if found, ok := tags[favourites[index].MangaID]; ok {
			favourites[index].Manga.Tags = found
		}
	}

	return favourites, nil
}

func (repository *PostgresRepository) listHistory(context context.Context, querier postgres.Querier, userID int64) ([]History, error) {
	query := fmt.Sprintf(`
		SELECT h.%s, h.%s, h.%s, h.%s, h.%s, h.%s, h.%s, h.%s, h.%s, %s
		FROM %s h
		JOIN %s m ON m.%s = h.%s
		WHERE h.%s = $1
		ORDER BY h.%s DESC, h.%s
	`,
		schema.History.MangaID, schema.History.CreatedAt, schema.History.UpdatedAt, schema.History.ChapterID,
		schema.History.Page, schema.History.Scroll, schema.History.Percent, schema.History.Chapters,
		schema.History.DeletedAt, catalog.SelectColumns("m"),
		schema.History.Table,
		schema.Manga.Table, schema.Manga.ID, schema.History.MangaID,
		schema.History.UserID,
		schema.History.UpdatedAt, schema.History.MangaID,
	)

	rows, err := querier.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_history", "History")
	}
	defer rows.Close()

	history := make([]History, 0)
	for rows.Next() {
		var entry History
		var record catalog.Record
		targets := append([]any{
			&entry.MangaID, &entry.CreatedAt, &entry.UpdatedAt, &entry.ChapterID,
			&entry.Page, &entry.Scroll, &entry.Percent, &entry.Chapters, &entry.DeletedAt,
		}, record.Targets()...)

		if err := rows.Scan(targets...); err != nil {
			return nil, dberr.Wrap(err, "scan_history", "History")
		}
		entry.Manga = record.Manga()
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_history", "History")
	}
	rows.Close()

	ids := slice.Map(history, func(entry History) int64 { return entry.MangaID })
	tags, err := repository.tags.TagsByManga(context, querier, ids)
	if err != nil {
		return nil, err
	}
	for index := range history {
		if found, ok := tags[history[index].MangaID]; ok {
			history[index].Manga.Tags = found
		}
	}

	return history, nil
}

// cursor reads the stored cursor of kind; NULL and 0 become the current time.
func (repository *PostgresRepository) cursor(context context.Context, querier postgres.Querier, userID int64, kind Kind) (int64, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, cursorColumns[kind], schema.UserAccount.Table, schema.UserAccount.ID)

	var stored *int64
	if err := querier.QueryRow(context, query, userID).Scan(&stored); err != nil {
		return 0, dberr.Wrap(err, "read_sync_timestamp", "User")
	}

	if stored == nil || *stored == 0 {
		return repository.now().Unix(), nil
	}
	return *stored, nil
}
