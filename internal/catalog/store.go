// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"

	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
)

// Upsert chunk sizes. Each keeps a statement well under the bind-parameter limit.
const (
	MangaChunkSize = 100
	TagChunkSize   = 300
	LinkChunkSize  = 300
)

// Repository defines the data access contract for the catalog.
//
// # Transactions
//
// Write and tag-read methods take an explicit [postgres.Querier] so the
// reconciler can run them inside its sync transaction. Browse reads use the
// pool directly.
type Repository interface {
	// UpsertTags inserts or overwrites tags by id (last writer wins).
	UpsertTags(ctx context.Context, querier postgres.Querier, tags []Tag) error

	// UpsertManga inserts or overwrites manga by id (last writer wins).
	// Tags carried by the manga are ignored; see [Repository.LinkMangaTags].
	UpsertManga(ctx context.Context, querier postgres.Querier, manga []Manga) error

	// LinkMangaTags adds manga-tag associations. Existing links are kept and
	// links absent from the input are never removed.
	LinkMangaTags(ctx context.Context, querier postgres.Querier, links []Link) error

	// TagsByManga returns the tags of each manga id, ordered by tag id.
	// Manga without tags are absent from the map.
	TagsByManga(ctx context.Context, querier postgres.Querier, mangaIDs []int64) (map[int64][]Tag, error)

	// List returns one page of the catalog ordered by manga id.
	List(ctx context.Context, limit, skip int) ([]Manga, error)

	// FindByID returns the manga with the given id.
	//
	// It returns a NOT_FOUND error if the manga is absent.
	FindByID(ctx context.Context, id int64) (*Manga, error)
}
