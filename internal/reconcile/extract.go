// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"github.com/taibuivan/yomira-sync/internal/catalog"
	"github.com/taibuivan/yomira-sync/internal/collection"
	"github.com/taibuivan/yomira-sync/pkg/slice"
)

// catalogBatch is the deduplicated catalog content of one snapshot.
type catalogBatch struct {
	manga []catalog.Manga
	tags  []catalog.Tag
	links []catalog.Link
}

// extractCatalog reduces referenced manga to one per manga_id and their tags
// to one per tag_id, last occurrence winning in both. Links come from the
// surviving manga only.
func extractCatalog(referenced []catalog.Manga) catalogBatch {
	manga := slice.DistinctBy(referenced, func(entry catalog.Manga) int64 { return entry.ID })

	var tags []catalog.Tag
	var links []catalog.Link
	for _, entry := range manga {
		tags = append(tags, entry.Tags...)
		links = append(links, entry.Links()...)
	}

	return catalogBatch{
		manga: manga,
		tags:  slice.DistinctBy(tags, func(tag catalog.Tag) int64 { return tag.ID }),
		links: slice.DistinctBy(links, func(link catalog.Link) catalog.Link { return link }),
	}
}

type favouriteKey struct {
	mangaID    int64
	categoryID int64
}

// distinctFavourites reduces a favourites snapshot to one row per key.
func distinctFavourites(snapshot collection.FavouritesSnapshot) ([]collection.Category, []collection.Favourite) {
	categories := slice.DistinctBy(snapshot.Categories, func(category collection.Category) int64 { return category.ID })
	favourites := slice.DistinctBy(snapshot.Favourites, func(favourite collection.Favourite) favouriteKey {
		return favouriteKey{favourite.MangaID, favourite.CategoryID}
	})
	return categories, favourites
}

// distinctHistory reduces a history snapshot to one row per manga.
func distinctHistory(snapshot collection.HistorySnapshot) []collection.History {
	return slice.DistinctBy(snapshot.History, func(entry collection.History) int64 { return entry.MangaID })
}
