// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-sync/internal/catalog"
	"github.com/taibuivan/yomira-sync/internal/collection"
	"github.com/taibuivan/yomira-sync/internal/platform/config"
	"github.com/taibuivan/yomira-sync/internal/platform/migration"
	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
	"github.com/taibuivan/yomira-sync/internal/reconcile"
	"github.com/taibuivan/yomira-sync/internal/users"
)

const integrationDatabaseEnv = "SYNC_TEST_DATABASE_URL"

type integration struct {
	reconciler *reconcile.Reconciler
	userID     int64
}

// newIntegration migrates the database named by SYNC_TEST_DATABASE_URL and
// creates a fresh user. The test is skipped when the variable is unset.
func newIntegration(t *testing.T, policy string) *integration {
	t.Helper()

	dsn := os.Getenv(integrationDatabaseEnv)
	if dsn == "" {
		t.Skipf("%s not set", integrationDatabaseEnv)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, migration.RunUp(dsn, "../../data/migrations", log))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := postgres.NewPool(ctx, dsn, log)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	userRepository := users.NewPostgresRepository(pool)
	email := fmt.Sprintf("sync-%d@example.com", time.Now().UnixNano())
	user, err := userRepository.Create(ctx, email, "not-a-real-hash")
	require.NoError(t, err)

	catalogRepository := catalog.NewPostgresRepository(pool)
	collectionRepository := collection.NewPostgresRepository(catalogRepository)

	return &integration{
		reconciler: reconcile.New(postgres.NewTransactor(pool), userRepository, catalogRepository, collectionRepository,
			reconcile.Options{CursorPolicy: policy}),
		userID: user.ID,
	}
}

// uniqueID keeps catalog ids of separate runs apart; the catalog is shared.
func uniqueID(offset int64) int64 {
	return time.Now().UnixNano()/1000 + offset
}

/*
TestPostgres_FavouritesRoundTrip runs the first-sync scenario against a real
database, then resubmits it and expects no change.
*/
func TestPostgres_FavouritesRoundTrip(t *testing.T) {
	env := newIntegration(t, config.CursorPolicyLegacy)
	ctx := context.Background()

	mangaID, tagID := uniqueID(0), uniqueID(1)
	payload := collection.FavouritesSnapshot{
		Categories: []collection.Category{{ID: 1, CreatedAt: 1, Title: "C1", Order: "NAME", Track: 1, ShowInLib: 1}},
		Favourites: []collection.Favourite{{
			MangaID:    mangaID,
			CategoryID: 1,
			Manga: catalog.Manga{
				ID:    mangaID,
				Title: strings.Repeat("t", 200),
				Tags:  []catalog.Tag{{ID: tagID, Title: "Action"}},
			},
		}},
		Timestamp: 1000,
	}

	merged, changed, err := env.reconciler.SyncFavourites(ctx, env.userID, payload)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(1000), merged.Timestamp)
	require.Len(t, merged.Favourites, 1)

	stored := merged.Favourites[0].Manga
	assert.Equal(t, strings.Repeat("t", catalog.TitleWidth), stored.Title)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, tagID, stored.Tags[0].ID)

	// Resubmitting what the server returned is a no-op.
	_, changed, err = env.reconciler.SyncFavourites(ctx, env.userID, *merged)
	require.NoError(t, err)
	assert.False(t, changed)
}

/*
TestPostgres_CategoryReadCap writes more categories than the read cap and
verifies only the cap is returned.
*/
func TestPostgres_CategoryReadCap(t *testing.T) {
	env := newIntegration(t, config.CursorPolicyServer)
	ctx := context.Background()

	categories := make([]collection.Category, 15)
	for index := range categories {
		categories[index] = collection.Category{ID: int64(index + 1), Title: fmt.Sprintf("C%d", index+1), Order: "NAME"}
	}

	_, _, err := env.reconciler.SyncFavourites(ctx, env.userID, collection.FavouritesSnapshot{Categories: categories, Timestamp: 1})
	require.NoError(t, err)

	snapshot, err := env.reconciler.GetFavourites(ctx, env.userID)
	require.NoError(t, err)
	assert.Len(t, snapshot.Categories, collection.CategoryReadLimit)
}

/*
TestPostgres_HistoryAdult verifies the content rating fallback survives a round trip.
*/
func TestPostgres_HistoryAdult(t *testing.T) {
	env := newIntegration(t, config.CursorPolicyLegacy)
	ctx := context.Background()

	mangaID := uniqueID(2)
	rating := "Adult"
	merged, changed, err := env.reconciler.SyncHistory(ctx, env.userID, collection.HistorySnapshot{
		History: []collection.History{{
			MangaID:   mangaID,
			Manga:     catalog.Manga{ID: mangaID, Title: "H", ContentRating: &rating, Tags: []catalog.Tag{}},
			UpdatedAt: 5,
			Chapters:  -1,
		}},
		Timestamp: 1,
	})
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, merged.History, 1)
	assert.True(t, merged.History[0].Manga.IsNSFW())
}
