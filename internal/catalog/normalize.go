// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"golang.org/x/text/cases"

	"github.com/taibuivan/yomira-sync/pkg/pointer"
)

// # Column Widths
//
// Widths are in characters and mirror the VARCHAR sizes of the catalog tables.

const (
	TitleWidth         = 84
	AltTitleWidth      = 84
	URLWidth           = 255
	StateWidth         = 24
	AuthorWidth        = 32
	SourceWidth        = 32
	TagTitleWidth      = 64
	TagKeyWidth        = 120
	TagSourceWidth     = 32
	adultContentRating = "adult"
	readAdultRating    = "ADULT"
)

// foldCase is stateless for String calls and safe to share.
var foldCase = cases.Fold()

// Truncate cuts value to at most width characters (runes, not bytes).
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}

	// Byte length bounds rune count, so short strings return untouched.
	if len(value) <= width {
		return value
	}

	count := 0
	for index := range value {
		if count == width {
			return value[:index]
		}
		count++
	}
	return value
}

func truncatePointer(value *string, width int) *string {
	if value == nil {
		return nil
	}
	return pointer.To(Truncate(*value, width))
}

// DeriveNSFW computes the stored adult flag.
//
// A positive explicit marker wins. A missing or non-positive marker falls
// through to the content rating, which counts when it equals "adult" under
// Unicode case folding. Neither present yields false.
func DeriveNSFW(nsfw *int, contentRating *string) bool {
	if nsfw != nil && *nsfw > 0 {
		return true
	}
	if contentRating == nil {
		return false
	}
	return foldCase.String(*contentRating) == adultContentRating
}

// NormalizeTag returns tag with every string cut to its column width.
func NormalizeTag(tag Tag) Tag {
	tag.Title = Truncate(tag.Title, TagTitleWidth)
	tag.Key = Truncate(tag.Key, TagKeyWidth)
	tag.Source = Truncate(tag.Source, TagSourceWidth)
	return tag
}

// NormalizeManga returns manga as it will be stored: strings cut to their
// column widths and the adult markers collapsed to their read-back form.
// Tags are left to [NormalizeTag].
func NormalizeManga(manga Manga) Manga {
	manga.Title = Truncate(manga.Title, TitleWidth)
	manga.AltTitle = truncatePointer(manga.AltTitle, AltTitleWidth)
	manga.URL = Truncate(manga.URL, URLWidth)
	manga.PublicURL = Truncate(manga.PublicURL, URLWidth)
	manga.CoverURL = Truncate(manga.CoverURL, URLWidth)
	manga.LargeCoverURL = truncatePointer(manga.LargeCoverURL, URLWidth)
	manga.State = truncatePointer(manga.State, StateWidth)
	manga.Author = truncatePointer(manga.Author, AuthorWidth)
	manga.Source = Truncate(manga.Source, SourceWidth)

	manga.NSFW, manga.ContentRating = adultMarkers(manga.IsNSFW())
	return manga
}

// adultMarkers renders the stored flag the way reads return it.
func adultMarkers(isNSFW bool) (*int, *string) {
	if isNSFW {
		return pointer.To(1), pointer.To(readAdultRating)
	}
	return pointer.To(0), nil
}
