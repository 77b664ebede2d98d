// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-sync/pkg/pointer"
)

/*
TestTruncate checks that widths count characters, not bytes.
*/
func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		width int
		want  string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"longer", "abcdef", 5, "abcde"},
		{"multibyte kept whole", "日本語のタイトル", 3, "日本語"},
		{"multibyte under width", "日本語", 5, "日本語"},
		{"zero width", "abc", 0, ""},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.value, tt.width)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

/*
TestDeriveNSFW covers the explicit marker, the content rating fallback and
their absence.
*/
func TestDeriveNSFW(t *testing.T) {
	tests := []struct {
		name   string
		nsfw   *int
		rating *string
		want   bool
	}{
		{"marker set", pointer.To(1), nil, true},
		{"marker large", pointer.To(7), pointer.To("SAFE"), true},
		{"marker zero, rating adult", pointer.To(0), pointer.To("ADULT"), true},
		{"marker negative, no rating", pointer.To(-1), nil, false},
		{"no marker, rating mixed case", nil, pointer.To("AdUlT"), true},
		{"no marker, rating safe", nil, pointer.To("SAFE"), false},
		{"no marker, rating padded", nil, pointer.To(" adult"), false},
		{"nothing", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveNSFW(tt.nsfw, tt.rating))
		})
	}
}

/*
TestNormalizeManga checks column widths and the read-back adult markers.
*/
func TestNormalizeManga(t *testing.T) {
	manga := Manga{
		ID:            1,
		Title:         strings.Repeat("t", 100),
		AltTitle:      pointer.To(strings.Repeat("a", 90)),
		URL:           strings.Repeat("u", 300),
		PublicURL:     "https://example.org/1",
		CoverURL:      "https://example.org/1.jpg",
		State:         pointer.To(strings.Repeat("s", 30)),
		Author:        pointer.To(strings.Repeat("й", 40)),
		Source:        "MANGADEX",
		ContentRating: pointer.To("adult"),
	}

	got := NormalizeManga(manga)

	assert.Len(t, got.Title, TitleWidth)
	assert.Len(t, *got.AltTitle, AltTitleWidth)
	assert.Len(t, got.URL, URLWidth)
	assert.Len(t, *got.State, StateWidth)
	assert.Equal(t, AuthorWidth, utf8.RuneCountInString(*got.Author))
	assert.Nil(t, got.LargeCoverURL)
	assert.Equal(t, 1, *got.NSFW)
	assert.Equal(t, "ADULT", *got.ContentRating)

	// Input is not mutated.
	assert.Len(t, *manga.AltTitle, 90)

	safe := NormalizeManga(Manga{ID: 2})
	assert.Equal(t, 0, *safe.NSFW)
	assert.Nil(t, safe.ContentRating)
}

/*
TestNormalizeTag checks tag column widths.
*/
func TestNormalizeTag(t *testing.T) {
	tag := NormalizeTag(Tag{
		ID:     1,
		Title:  strings.Repeat("t", 70),
		Key:    strings.Repeat("k", 130),
		Source: strings.Repeat("s", 40),
	})

	assert.Len(t, tag.Title, TagTitleWidth)
	assert.Len(t, tag.Key, TagKeyWidth)
	assert.Len(t, tag.Source, TagSourceWidth)
}
