// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog owns the manga catalog shared by every user: manga, tags and
the links between them.

Catalog rows are never created directly by clients. They arrive embedded in
favourites and history snapshots, are normalized ([NormalizeManga],
[NormalizeTag]) and written with last-writer-wins upserts, and are exposed
read-only through the browse endpoints.
*/
package catalog

import "github.com/taibuivan/yomira-sync/pkg/pointer"

// # Domain Entities

// Tag is a source-specific genre or label, shared across manga and users.
type Tag struct {
	ID     int64  `json:"tag_id"`
	Title  string `json:"title"`
	Key    string `json:"key"`
	Source string `json:"source"`
}

// Manga is one catalog entry as reader clients describe it.
//
// NSFW and ContentRating are the two client-side adult markers; only the
// derived flag is stored (see [DeriveNSFW]). On read NSFW is 1 or 0 and
// ContentRating is "ADULT" or nil.
type Manga struct {
	ID            int64   `json:"manga_id"`
	Title         string  `json:"title"`
	AltTitle      *string `json:"alt_title"`
	URL           string  `json:"url"`
	PublicURL     string  `json:"public_url"`
	Rating        float32 `json:"rating"`
	NSFW          *int    `json:"nsfw"`
	ContentRating *string `json:"content_rating"`
	CoverURL      string  `json:"cover_url"`
	LargeCoverURL *string `json:"large_cover_url"`
	State         *string `json:"state"`
	Author        *string `json:"author"`
	Source        string  `json:"source"`
	Tags          []Tag   `json:"tags"`
}

// Link associates a manga with one of its tags.
type Link struct {
	MangaID int64
	TagID   int64
}

// IsNSFW reports the adult flag as it will be stored.
func (manga Manga) IsNSFW() bool {
	return DeriveNSFW(manga.NSFW, manga.ContentRating)
}

// Links returns one [Link] per tag of the manga.
func (manga Manga) Links() []Link {
	links := make([]Link, 0, len(manga.Tags))
	for _, tag := range manga.Tags {
		links = append(links, Link{MangaID: manga.ID, TagID: tag.ID})
	}
	return links
}

// # Equality

// Equal reports whether two manga describe the same stored state.
//
// The adult markers are compared in derived form, nil and empty tag lists
// are equal, and tags are compared in order.
func (manga Manga) Equal(other Manga) bool {
	if manga.ID != other.ID ||
		manga.Title != other.Title ||
		manga.URL != other.URL ||
		manga.PublicURL != other.PublicURL ||
		manga.Rating != other.Rating ||
		manga.CoverURL != other.CoverURL ||
		manga.Source != other.Source {
		return false
	}

	if !pointer.Equal(manga.AltTitle, other.AltTitle) ||
		!pointer.Equal(manga.LargeCoverURL, other.LargeCoverURL) ||
		!pointer.Equal(manga.State, other.State) ||
		!pointer.Equal(manga.Author, other.Author) {
		return false
	}

	if manga.IsNSFW() != other.IsNSFW() {
		return false
	}

	if len(manga.Tags) != len(other.Tags) {
		return false
	}
	for index := range manga.Tags {
		if manga.Tags[index] != other.Tags[index] {
			return false
		}
	}

	return true
}
