// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import (
	"encoding/json"
	"slices"
)

// FavouritesSnapshot is the full client view of a user's favourites.
type FavouritesSnapshot struct {
	Categories []Category  `json:"categories" validate:"dive"`
	Favourites []Favourite `json:"favourites" validate:"dive"`
	Timestamp  int64       `json:"timestamp" validate:"gte=0"`
}

// HistorySnapshot is the full client view of a user's reading history.
type HistorySnapshot struct {
	History   []History `json:"history" validate:"dive"`
	Timestamp int64     `json:"timestamp" validate:"gte=0"`
}

// UnmarshalJSON accepts the older "favourite_categories" key when
// "categories" is absent.
func (snapshot *FavouritesSnapshot) UnmarshalJSON(data []byte) error {
	type plain FavouritesSnapshot
	var wire struct {
		plain
		Legacy []Category `json:"favourite_categories"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*snapshot = FavouritesSnapshot(wire.plain)
	if snapshot.Categories == nil && wire.Legacy != nil {
		snapshot.Categories = wire.Legacy
	}
	return nil
}

// # Snapshot Equality
//
// Lists compare in order; a nil list equals an empty one. The timestamp is
// the sync cursor, not content, and is ignored.

// Equal reports whether two favourites snapshots hold the same rows.
func (snapshot FavouritesSnapshot) Equal(other FavouritesSnapshot) bool {
	return slices.Equal(snapshot.Categories, other.Categories) &&
		slices.EqualFunc(snapshot.Favourites, other.Favourites, Favourite.Equal)
}

// Equal reports whether two history snapshots hold the same rows.
func (snapshot HistorySnapshot) Equal(other HistorySnapshot) bool {
	return slices.EqualFunc(snapshot.History, other.History, History.Equal)
}
