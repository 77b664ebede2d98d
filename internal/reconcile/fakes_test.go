// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/yomira-sync/internal/catalog"
	"github.com/taibuivan/yomira-sync/internal/collection"
	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
	"github.com/taibuivan/yomira-sync/pkg/slice"
)

var errSimulated = errors.New("simulated failure")

// memoryState is the durable content of the fake database.
type memoryState struct {
	users      map[int64]bool
	manga      map[int64]catalog.Manga
	tags       map[int64]catalog.Tag
	links      map[catalog.Link]bool
	categories map[int64]map[int64]collection.Category
	favourites map[int64]map[favouriteKey]collection.Favourite
	history    map[int64]map[int64]collection.History
	cursors    map[int64]map[collection.Kind]int64
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:      map[int64]bool{},
		manga:      map[int64]catalog.Manga{},
		tags:       map[int64]catalog.Tag{},
		links:      map[catalog.Link]bool{},
		categories: map[int64]map[int64]collection.Category{},
		favourites: map[int64]map[favouriteKey]collection.Favourite{},
		history:    map[int64]map[int64]collection.History{},
		cursors:    map[int64]map[collection.Kind]int64{},
	}
}

func (state *memoryState) clone() *memoryState {
	copied := &memoryState{
		users:      maps.Clone(state.users),
		manga:      maps.Clone(state.manga),
		tags:       maps.Clone(state.tags),
		links:      maps.Clone(state.links),
		categories: map[int64]map[int64]collection.Category{},
		favourites: map[int64]map[favouriteKey]collection.Favourite{},
		history:    map[int64]map[int64]collection.History{},
		cursors:    map[int64]map[collection.Kind]int64{},
	}
	for user, rows := range state.categories {
		copied.categories[user] = maps.Clone(rows)
	}
	for user, rows := range state.favourites {
		copied.favourites[user] = maps.Clone(rows)
	}
	for user, rows := range state.history {
		copied.history[user] = maps.Clone(rows)
	}
	for user, rows := range state.cursors {
		copied.cursors[user] = maps.Clone(rows)
	}
	return copied
}

// memoryTx is the Querier handed to transaction callbacks. SQL methods are
// never called by the fake stores.
type memoryTx struct {
	state *memoryState
}

func (tx *memoryTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("memoryTx: Exec not supported")
}

func (tx *memoryTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("memoryTx: Query not supported")
}

func (tx *memoryTx) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func stateOf(querier postgres.Querier) *memoryState {
	return querier.(*memoryTx).state
}

// memoryDB implements postgres.Transactor with copy-on-begin transactions.
type memoryDB struct {
	mu      sync.Mutex
	state   *memoryState
	readErr error
	txCount int
}

func newMemoryDB() *memoryDB {
	return &memoryDB{state: newMemoryState()}
}

func (db *memoryDB) WithinTx(_ context.Context, fn func(q postgres.Querier) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.txCount++
	tx := &memoryTx{state: db.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	db.state = tx.state
	return nil
}

func (db *memoryDB) WithinReadTx(_ context.Context, fn func(q postgres.Querier) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.readErr != nil {
		return db.readErr
	}
	return fn(&memoryTx{state: db.state.clone()})
}

func (db *memoryDB) Exists(_ context.Context, userID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state.users[userID], nil
}

func (db *memoryDB) counts() (manga, tags, links int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.state.manga), len(db.state.tags), len(db.state.links)
}

// memoryCatalog implements CatalogWriter over memoryTx.
type memoryCatalog struct {
	failTags bool
}

func (store *memoryCatalog) UpsertTags(_ context.Context, querier postgres.Querier, tags []catalog.Tag) error {
	if store.failTags {
		return errSimulated
	}
	state := stateOf(querier)
	for _, tag := range tags {
		state.tags[tag.ID] = catalog.NormalizeTag(tag)
	}
	return nil
}

func (store *memoryCatalog) UpsertManga(_ context.Context, querier postgres.Querier, manga []catalog.Manga) error {
	state := stateOf(querier)
	for _, entry := range manga {
		entry = catalog.NormalizeManga(entry)
		entry.Tags = nil
		state.manga[entry.ID] = entry
	}
	return nil
}

func (store *memoryCatalog) LinkMangaTags(_ context.Context, querier postgres.Querier, links []catalog.Link) error {
	state := stateOf(querier)
	for _, link := range links {
		if _, ok := state.manga[link.MangaID]; !ok {
			return errors.New("foreign key: manga")
		}
		if _, ok := state.tags[link.TagID]; !ok {
			return errors.New("foreign key: tag")
		}
		state.links[link] = true
	}
	return nil
}

// memoryCollections implements collection.Repository over memoryTx.
type memoryCollections struct {
	now int64

	// failLastFavouriteChunk writes every row, then fails like a last chunk would.
	failLastFavouriteChunk bool
	failCursor             bool
}

func (store *memoryCollections) UpsertCategories(_ context.Context, querier postgres.Querier, userID int64, categories []collection.Category) error {
	state := stateOf(querier)
	if state.categories[userID] == nil {
		state.categories[userID] = map[int64]collection.Category{}
	}
	for _, category := range categories {
		state.categories[userID][category.ID] = collection.NormalizeCategory(category)
	}
	return nil
}

func (store *memoryCollections) UpsertFavourites(_ context.Context, querier postgres.Querier, userID int64, favourites []collection.Favourite) error {
	state := stateOf(querier)
	if state.favourites[userID] == nil {
		state.favourites[userID] = map[favouriteKey]collection.Favourite{}
	}
	for _, favourite := range favourites {
		if _, ok := state.categories[userID][favourite.CategoryID]; !ok {
			return errors.New("foreign key: category")
		}
		favourite.Manga = catalog.Manga{}
		state.favourites[userID][favouriteKey{favourite.MangaID, favourite.CategoryID}] = favourite
	}
	if store.failLastFavouriteChunk {
		return errSimulated
	}
	return nil
}

func (store *memoryCollections) UpsertHistory(_ context.Context, querier postgres.Querier, userID int64, history []collection.History) error {
	state := stateOf(querier)
	if state.history[userID] == nil {
		state.history[userID] = map[int64]collection.History{}
	}
	for _, entry := range history {
		entry.Manga = catalog.Manga{}
		state.history[userID][entry.MangaID] = entry
	}
	return nil
}

func (store *memoryCollections) AdvanceSyncTimestamp(_ context.Context, querier postgres.Querier, userID int64, kind collection.Kind, timestamp int64) error {
	if store.failCursor {
		return errSimulated
	}
	state := stateOf(querier)
	if state.cursors[userID] == nil {
		state.cursors[userID] = map[collection.Kind]int64{}
	}
	state.cursors[userID][kind] = timestamp
	return nil
}

func (store *memoryCollections) GetFavouritesSnapshot(_ context.Context, querier postgres.Querier, userID int64) (*collection.FavouritesSnapshot, error) {
	state := stateOf(querier)

	categories := slices.Collect(maps.Values(state.categories[userID]))
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	if len(categories) == 0 {
		return &collection.FavouritesSnapshot{Categories: []collection.Category{}, Favourites: []collection.Favourite{}, Timestamp: store.now}, nil
	}
	if len(categories) > collection.CategoryReadLimit {
		categories = categories[:collection.CategoryReadLimit]
	}

	favourites := slices.Collect(maps.Values(state.favourites[userID]))
	sort.Slice(favourites, func(i, j int) bool {
		a, b := favourites[i], favourites[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		if a.SortKey != b.SortKey {
			return a.SortKey < b.SortKey
		}
		return a.MangaID < b.MangaID
	})
	for index := range favourites {
		favourites[index].Manga = readManga(state, favourites[index].MangaID)
	}

	return &collection.FavouritesSnapshot{
		Categories: categories,
		Favourites: favourites,
		Timestamp:  store.cursor(state, userID, collection.KindFavourites),
	}, nil
}

func (store *memoryCollections) GetHistorySnapshot(_ context.Context, querier postgres.Querier, userID int64) (*collection.HistorySnapshot, error) {
	state := stateOf(querier)

	history := slices.Collect(maps.Values(state.history[userID]))
	sort.Slice(history, func(i, j int) bool {
		if history[i].UpdatedAt != history[j].UpdatedAt {
			return history[i].UpdatedAt > history[j].UpdatedAt
		}
		return history[i].MangaID < history[j].MangaID
	})
	if history == nil {
		history = []collection.History{}
	}
	for index := range history {
		history[index].Manga = readManga(state, history[index].MangaID)
	}

	return &collection.HistorySnapshot{History: history, Timestamp: store.cursor(state, userID, collection.KindHistory)}, nil
}

func (store *memoryCollections) cursor(state *memoryState, userID int64, kind collection.Kind) int64 {
	if stored := state.cursors[userID][kind]; stored != 0 {
		return stored
	}
	return store.now
}

// readManga renders a stored manga the way the catalog read path does.
func readManga(state *memoryState, mangaID int64) catalog.Manga {
	manga := catalog.NormalizeManga(state.manga[mangaID])
	manga.Tags = []catalog.Tag{}
	for link := range state.links {
		if link.MangaID == mangaID {
			manga.Tags = append(manga.Tags, state.tags[link.TagID])
		}
	}
	sort.Slice(manga.Tags, func(i, j int) bool { return manga.Tags[i].ID < manga.Tags[j].ID })
	return manga
}

// memoryCache is a SnapshotCache storing JSON per generation like the Redis cache does.
type memoryCache struct {
	entries       map[string][]byte
	generations   map[string]int64
	invalidations int
	getErr        error
	generationErr error

	// beforeSet runs once, between a fetch's database read and its cache write.
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, generations: map[string]int64{}}
}

func entryKey(key string, generation int64) string {
	return fmt.Sprintf("%s:%d", key, generation)
}

func (cache *memoryCache) Generation(_ context.Context, key string) (int64, error) {
	if cache.generationErr != nil {
		return 0, cache.generationErr
	}
	return cache.generations[key], nil
}

func (cache *memoryCache) Get(_ context.Context, key string, generation int64, target any) (bool, error) {
	if cache.getErr != nil {
		return false, cache.getErr
	}
	payload, ok := cache.entries[entryKey(key, generation)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, target)
}

func (cache *memoryCache) Set(_ context.Context, key string, generation int64, value any) error {
	if hook := cache.beforeSet; hook != nil {
		cache.beforeSet = nil
		hook()
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	cache.entries[entryKey(key, generation)] = payload
	return nil
}

func (cache *memoryCache) Invalidate(_ context.Context, key string) error {
	cache.invalidations++
	cache.generations[key]++
	return nil
}

// tagIDs lists the tag ids of a manga, for assertions.
func tagIDs(manga catalog.Manga) []int64 {
	return slice.Map(manga.Tags, func(tag catalog.Tag) int64 { return tag.ID })
}
