// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package collection owns the per-user collections: categories, favourites and
reading history, plus the two sync cursors stored on the user row.

Rows are never deleted. A client removes an entry by sending it again with a
non-zero deleted_at (a tombstone); entries missing from a submitted snapshot
are left untouched.
*/
package collection

import (
	"github.com/taibuivan/yomira-sync/internal/catalog"
)

// Kind names one of the two independently synchronized collections.
type Kind string

const (
	KindFavourites Kind = "favourites"
	KindHistory    Kind = "history"
)

// # Column Widths

const (
	CategoryTitleWidth = 120
	CategoryOrderWidth = 16
)

// # Domain Entities

// Category groups favourites for one user.
//
// Track and ShowInLib are 0/1 flags on the wire and booleans in storage.
type Category struct {
	ID        int64  `json:"category_id"`
	CreatedAt int64  `json:"created_at"`
	SortKey   int32  `json:"sort_key"`
	Title     string `json:"title"`
	Order     string `json:"order"`
	Track     int8   `json:"track"`
	ShowInLib int8   `json:"show_in_lib"`
	DeletedAt int64  `json:"deleted_at" validate:"gte=0"`
}

// Favourite places one manga in one category.
type Favourite struct {
	MangaID    int64         `json:"manga_id"`
	Manga      catalog.Manga `json:"manga"`
	CategoryID int64         `json:"category_id"`
	SortKey    int32         `json:"sort_key"`
	CreatedAt  int64         `json:"created_at"`
	DeletedAt  int64         `json:"deleted_at" validate:"gte=0"`
}

// History is the reading position of one manga for one user.
type History struct {
	MangaID   int64         `json:"manga_id"`
	Manga     catalog.Manga `json:"manga"`
	CreatedAt int64         `json:"created_at"`
	UpdatedAt int64         `json:"updated_at"`
	ChapterID int64         `json:"chapter_id"`
	Page      int16         `json:"page"`
	Scroll    float64       `json:"scroll"`
	Percent   float64       `json:"percent"`
	Chapters  int32         `json:"chapters"`
	DeletedAt int64         `json:"deleted_at" validate:"gte=0"`
}

// CatalogManga returns the referenced manga keyed by the favourite's own id.
// Clients may omit manga.manga_id; the favourite's manga_id is authoritative.
func (favourite Favourite) CatalogManga() catalog.Manga {
	manga := favourite.Manga
	manga.ID = favourite.MangaID
	return manga
}

// CatalogManga returns the referenced manga keyed by the entry's own id.
func (history History) CatalogManga() catalog.Manga {
	manga := history.Manga
	manga.ID = history.MangaID
	return manga
}

// # Normalization

// NormalizeCategory returns category as it will be stored.
func NormalizeCategory(category Category) Category {
	category.Title = catalog.Truncate(category.Title, CategoryTitleWidth)
	category.Order = catalog.Truncate(category.Order, CategoryOrderWidth)
	category.Track = flag(category.Track != 0)
	category.ShowInLib = flag(category.ShowInLib != 0)
	return category
}

func flag(value bool) int8 {
	if value {
		return 1
	}
	return 0
}

// # Equality

// Equal compares every field, including the referenced manga.
func (favourite Favourite) Equal(other Favourite) bool {
	return favourite.MangaID == other.MangaID &&
		favourite.CategoryID == other.CategoryID &&
		favourite.SortKey == other.SortKey &&
		favourite.CreatedAt == other.CreatedAt &&
		favourite.DeletedAt == other.DeletedAt &&
		favourite.CatalogManga().Equal(other.CatalogManga())
}

// Equal compares every field, including the referenced manga.
func (history History) Equal(other History) bool {
	return history.MangaID == other.MangaID &&
		history.CreatedAt == other.CreatedAt &&
		history.UpdatedAt == other.UpdatedAt &&
		history.ChapterID == other.ChapterID &&
		history.Page == other.Page &&
		history.Scroll == other.Scroll &&
		history.Percent == other.Percent &&
		history.Chapters == other.Chapters &&
		history.DeletedAt == other.DeletedAt &&
		history.CatalogManga().Equal(other.CatalogManga())
}
