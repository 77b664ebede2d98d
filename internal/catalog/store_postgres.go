// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-sync/internal/platform/database/schema"
	"github.com/taibuivan/yomira-sync/internal/platform/dberr"
	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
	"github.com/taibuivan/yomira-sync/internal/platform/upsert"
	"github.com/taibuivan/yomira-sync/pkg/slice"
)

// # Statements

var (
	mangaStatement = upsert.Statement{
		Table:   schema.Manga.Table,
		Columns: schema.Manga.Columns(),
		Conflict: upsert.OnConflictUpdate(
			[]string{schema.Manga.ID},
			upsert.NonKey(schema.Manga.Columns(), []string{schema.Manga.ID}),
		),
	}

	tagStatement = upsert.Statement{
		Table:   schema.Tag.Table,
		Columns: schema.Tag.Columns(),
		Conflict: upsert.OnConflictUpdate(
			[]string{schema.Tag.ID},
			upsert.NonKey(schema.Tag.Columns(), []string{schema.Tag.ID}),
		),
	}

	linkStatement = upsert.Statement{
		Table:    schema.MangaTag.Table,
		Columns:  schema.MangaTag.Columns(),
		Conflict: upsert.OnConflictIgnore(schema.MangaTag.Columns()),
	}
)

// # Repository

// PostgresRepository implements [Repository] on PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Writes

/*
UpsertTags writes tags in chunks of [TagChunkSize].

Description: Tags are normalized to their column widths and reduced to one
row per id (last occurrence wins) so no chunk collides with itself.

Parameters:
  - context: context.Context
  - querier: postgres.Querier (the sync transaction)
  - tags: []Tag

Returns:
  - error: the first failing chunk, wrapped as INTERNAL_ERROR
*/
func (repository *PostgresRepository) UpsertTags(context context.Context, querier postgres.Querier, tags []Tag) error {
	rows := slice.Map(slice.DistinctBy(tags, tagKey), NormalizeTag)

	_, err := upsert.Exec(context, querier, tagStatement, TagChunkSize, rows, func(tag Tag) []any {
		return []any{tag.ID, tag.Title, tag.Key, tag.Source}
	})
	return dberr.Wrap(err, "upsert_tags", "Tag")
}

/*
UpsertManga writes manga rows in chunks of [MangaChunkSize].

Parameters:
  - context: context.Context
  - querier: postgres.Querier (the sync transaction)
  - manga: []Manga (tags are not written here)

Returns:
  - error: the first failing chunk, wrapped as INTERNAL_ERROR
*/
func (repository *PostgresRepository) UpsertManga(context context.Context, querier postgres.Querier, manga []Manga) error {
	rows := slice.DistinctBy(manga, mangaKey)

	_, err := upsert.Exec(context, querier, mangaStatement, MangaChunkSize, rows, func(entry Manga) []any {
		entry = NormalizeManga(entry)
		return []any{
			entry.ID, entry.Title, entry.AltTitle, entry.URL, entry.PublicURL, entry.Rating,
			entry.IsNSFW(), entry.CoverURL, entry.LargeCoverURL, entry.State, entry.Author, entry.Source,
		}
	})
	return dberr.Wrap(err, "upsert_manga", "Manga")
}

// LinkMangaTags writes links in chunks of [LinkChunkSize], ignoring existing pairs.
func (repository *PostgresRepository) LinkMangaTags(context context.Context, querier postgres.Querier, links []Link) error {
	rows := slice.DistinctBy(links, func(link Link) Link { return link })

	_, err := upsert.Exec(context, querier, linkStatement, LinkChunkSize, rows, func(link Link) []any {
		return []any{link.MangaID, link.TagID}
	})
	return dberr.Wrap(err, "link_manga_tags", "Tag")
}

// # Reads

// TagsByManga loads the tags of every manga in mangaIDs with a single query.
func (repository *PostgresRepository) TagsByManga(context context.Context, querier postgres.Querier, mangaIDs []int64) (map[int64][]Tag, error) {
	result := make(map[int64][]Tag)
	if len(mangaIDs) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`
		SELECT mt.%s, t.%s, t.%s, t.%s, t.%s
		FROM %s mt
		JOIN %s t ON t.%s = mt.%s
		WHERE mt.%s = ANY($1)
		ORDER BY mt.%s, t.%s
	`,
		schema.MangaTag.MangaID, schema.Tag.ID, schema.Tag.Title, schema.Tag.Key, schema.Tag.Source,
		schema.MangaTag.Table,
		schema.Tag.Table, schema.Tag.ID, schema.MangaTag.TagID,
		schema.MangaTag.MangaID,
		schema.MangaTag.MangaID, schema.Tag.ID,
	)

	rows, err := querier.Query(context, query, mangaIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "tags_by_manga", "Tag")
	}
	defer rows.Close()

	for rows.Next() {
		var mangaID int64
		var tag Tag
		if err := rows.Scan(&mangaID, &tag.ID, &tag.Title, &tag.Key, &tag.Source); err != nil {
			return nil, dberr.Wrap(err, "scan_tag", "Tag")
		}
		result[mangaID] = append(result[mangaID], tag)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_tags", "Tag")
	}

	return result, nil
}

// List returns limit manga after skipping skip rows, ordered by id, with tags.
func (repository *PostgresRepository) List(context context.Context, limit, skip int) ([]Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m ORDER BY m.%s LIMIT $1 OFFSET $2`,
		SelectColumns("m"), schema.Manga.Table, schema.Manga.ID)

	rows, err := repository.pool.Query(context, query, limit, skip)
	if err != nil {
		return nil, dberr.Wrap(err, "list_manga", "Manga")
	}
	defer rows.Close()

	manga := make([]Manga, 0, limit)
	for rows.Next() {
		var record Record
		if err := rows.Scan(record.Targets()...); err != nil {
			return nil, dberr.Wrap(err, "scan_manga", "Manga")
		}
		manga = append(manga, record.Manga())
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_manga", "Manga")
	}
	rows.Close()

	if err := repository.attachTags(context, repository.pool, manga); err != nil {
		return nil, err
	}

	return manga, nil
}

// FindByID returns one manga with its tags.
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Manga, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s m WHERE m.%s = $1`,
		SelectColumns("m"), schema.Manga.Table, schema.Manga.ID)

	var record Record
	if err := repository.pool.QueryRow(context, query, id).Scan(record.Targets()...); err != nil {
		return nil, dberr.Wrap(err, "find_manga_by_id", "Manga")
	}

	manga := []Manga{record.Manga()}
	if err := repository.attachTags(context, repository.pool, manga); err != nil {
		return nil, err
	}

	return &manga[0], nil
}

// attachTags fills the Tags of every element of manga in place.
func (repository *PostgresRepository) attachTags(context context.Context, querier postgres.Querier, manga []Manga) error {
	ids := slice.Map(manga, mangaKey)

	tags, err := repository.TagsByManga(context, querier, ids)
	if err != nil {
		return err
	}

	for index := range manga {
		if found, ok := tags[manga[index].ID]; ok {
			manga[index].Tags = found
		}
	}
	return nil
}

// # Row Mapping

// SelectColumns renders the manga read columns qualified by alias, in the
// order [Record.Targets] expects them.
func SelectColumns(alias string) string {
	columns := schema.Manga.Columns()
	qualified := make([]string, len(columns))
	for index, column := range columns {
		qualified[index] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}

// Record is the scan buffer for one manga row selected with [SelectColumns].
type Record struct {
	manga  Manga
	isNSFW bool
}

// Targets returns the scan destinations in [SelectColumns] order.
func (record *Record) Targets() []any {
	return []any{
		&record.manga.ID, &record.manga.Title, &record.manga.AltTitle, &record.manga.URL,
		&record.manga.PublicURL, &record.manga.Rating, &record.isNSFW, &record.manga.CoverURL,
		&record.manga.LargeCoverURL, &record.manga.State, &record.manga.Author, &record.manga.Source,
	}
}

// Manga returns the scanned row in read form: adult markers rendered from the
// stored flag and an empty (non-nil) tag list.
func (record *Record) Manga() Manga {
	manga := record.manga
	manga.NSFW, manga.ContentRating = adultMarkers(record.isNSFW)
	manga.Tags = []Tag{}
	return manga
}

func tagKey(tag Tag) int64 { return tag.ID }

func mangaKey(manga Manga) int64 { return manga.ID }
