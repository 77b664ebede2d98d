// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-sync/pkg/pointer"
)

func sampleManga() Manga {
	return Manga{
		ID:        42,
		Title:     "Sample",
		URL:       "/manga/42",
		PublicURL: "https://example.org/manga/42",
		Rating:    0.8,
		CoverURL:  "https://example.org/42.jpg",
		Source:    "MANGADEX",
		Tags: []Tag{
			{ID: 1, Title: "Action", Key: "action", Source: "MANGADEX"},
			{ID: 2, Title: "Drama", Key: "drama", Source: "MANGADEX"},
		},
	}
}

/*
TestManga_Equal checks field-wise equality and the derived adult flag.
*/
func TestManga_Equal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Manga)
		want   bool
	}{
		{"identical", func(*Manga) {}, true},
		{"title differs", func(m *Manga) { m.Title = "Other" }, false},
		{"alt title nil vs set", func(m *Manga) { m.AltTitle = pointer.To("Alt") }, false},
		{"rating differs", func(m *Manga) { m.Rating = 0.5 }, false},
		{"content rating adult vs marker", func(m *Manga) { m.ContentRating = pointer.To("adult") }, false},
		{"safe rating equals absence", func(m *Manga) { m.ContentRating = pointer.To("SAFE") }, true},
		{"zero marker equals absence", func(m *Manga) { m.NSFW = pointer.To(0) }, true},
		{"tags reordered", func(m *Manga) { m.Tags[0], m.Tags[1] = m.Tags[1], m.Tags[0] }, false},
		{"tag removed", func(m *Manga) { m.Tags = m.Tags[:1] }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := sampleManga()
			tt.mutate(&other)
			assert.Equal(t, tt.want, sampleManga().Equal(other))
		})
	}
}

/*
TestManga_Equal_AdultForms checks that the two adult markers compare equal
once derived.
*/
func TestManga_Equal_AdultForms(t *testing.T) {
	byMarker := sampleManga()
	byMarker.NSFW = pointer.To(1)

	byRating := sampleManga()
	byRating.ContentRating = pointer.To("Adult")

	assert.True(t, byMarker.Equal(byRating))
	assert.True(t, byMarker.Equal(NormalizeManga(byRating)))
}

/*
TestManga_Equal_EmptyTags treats nil and empty tag lists as equal.
*/
func TestManga_Equal_EmptyTags(t *testing.T) {
	withNil := sampleManga()
	withNil.Tags = nil

	withEmpty := sampleManga()
	withEmpty.Tags = []Tag{}

	assert.True(t, withNil.Equal(withEmpty))
}

func TestManga_Links(t *testing.T) {
	assert.Equal(t, []Link{{MangaID: 42, TagID: 1}, {MangaID: 42, TagID: 2}}, sampleManga().Links())
}
