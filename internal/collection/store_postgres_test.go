// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-sync/internal/catalog"
	"github.com/taibuivan/yomira-sync/internal/platform/apperr"
	"github.com/taibuivan/yomira-sync/internal/platform/postgres"
)

// fakeQuerier records writes, returns empty result sets and a fixed cursor.
type fakeQuerier struct {
	statements   []string
	arguments    [][]any
	rowsAffected int64
	cursor       *int64
	cursorErr    error
}

func (querier *fakeQuerier) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	querier.statements = append(querier.statements, sql)
	querier.arguments = append(querier.arguments, arguments)
	if querier.rowsAffected == 0 {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (querier *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return &emptyRows{}, nil
}

func (querier *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return cursorRow{value: querier.cursor, err: querier.cursorErr}
}

type cursorRow struct {
	value *int64
	err   error
}

func (row cursorRow) Scan(dest ...any) error {
	if row.err != nil {
		return row.err
	}
	*(dest[0].(**int64)) = row.value
	return nil
}

type emptyRows struct{ closed bool }

func (rows *emptyRows) Close()                                       { rows.closed = true }
func (rows *emptyRows) Err() error                                   { return nil }
func (rows *emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT 0") }
func (rows *emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (rows *emptyRows) Next() bool                                   { return false }
func (rows *emptyRows) Scan(...any) error                            { return errors.New("no rows") }
func (rows *emptyRows) Values() ([]any, error)                       { return nil, nil }
func (rows *emptyRows) RawValues() [][]byte                          { return nil }
func (rows *emptyRows) Conn() *pgx.Conn                              { return nil }

type noTags struct{}

func (noTags) TagsByManga(context.Context, postgres.Querier, []int64) (map[int64][]catalog.Tag, error) {
	return map[int64][]catalog.Tag{}, nil
}

var fixedNow = time.Unix(1_700_000_000, 0)

func newTestRepository() *PostgresRepository {
	repository := NewPostgresRepository(noTags{})
	repository.now = func() time.Time { return fixedNow }
	return repository
}

/*
TestGetFavouritesSnapshot_NoCategories returns an empty snapshot stamped now.
*/
func TestGetFavouritesSnapshot_NoCategories(t *testing.T) {
	stored := int64(1000)
	querier := &fakeQuerier{cursor: &stored}

	snapshot, err := newTestRepository().GetFavouritesSnapshot(context.Background(), querier, 1)
	require.NoError(t, err)

	assert.NotNil(t, snapshot.Categories)
	assert.NotNil(t, snapshot.Favourites)
	assert.Empty(t, snapshot.Categories)
	assert.Equal(t, fixedNow.Unix(), snapshot.Timestamp)
}

/*
TestGetHistorySnapshot_Cursor checks the never-synced substitution.
*/
func TestGetHistorySnapshot_Cursor(t *testing.T) {
	zero, stored := int64(0), int64(1234)

	tests := []struct {
		name   string
		cursor *int64
		want   int64
	}{
		{"never synced", nil, fixedNow.Unix()},
		{"zero", &zero, fixedNow.Unix()},
		{"stored", &stored, 1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := newTestRepository().GetHistorySnapshot(context.Background(), &fakeQuerier{cursor: tt.cursor}, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, snapshot.Timestamp)
			assert.NotNil(t, snapshot.History)
		})
	}
}

func TestGetHistorySnapshot_MissingUser(t *testing.T) {
	_, err := newTestRepository().GetHistorySnapshot(context.Background(), &fakeQuerier{cursorErr: pgx.ErrNoRows}, 1)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_FOUND", appError.Code)
}

/*
TestUpsertCategories_Rows checks the owner id, flags and duplicate handling.
*/
func TestUpsertCategories_Rows(t *testing.T) {
	querier := &fakeQuerier{rowsAffected: 1}

	categories := []Category{
		{ID: 1, Title: "old", Track: 1},
		{ID: 2, Title: "two"},
		{ID: 1, Title: "new", Track: 0, ShowInLib: 1},
	}
	require.NoError(t, newTestRepository().UpsertCategories(context.Background(), querier, 99, categories))

	require.Len(t, querier.statements, 1)
	assert.Contains(t, querier.statements[0], `"order" = EXCLUDED."order"`)
	assert.Contains(t, querier.statements[0], "ON CONFLICT (id, user_id)")

	row := querier.arguments[0]
	require.Len(t, row, 2*len(categoryStatement.Columns))
	assert.Equal(t, []any{int64(1), int64(99), int64(0), int32(0), "new", "", false, true, int64(0)}, row[:9])
}

func TestUpsertFavourites_Chunks(t *testing.T) {
	querier := &fakeQuerier{rowsAffected: 1}

	favourites := make([]Favourite, 450)
	for index := range favourites {
		favourites[index] = Favourite{MangaID: int64(index), CategoryID: 1}
	}
	require.NoError(t, newTestRepository().UpsertFavourites(context.Background(), querier, 1, favourites))

	assert.Len(t, querier.statements, 3)
	assert.Contains(t, querier.statements[0], "ON CONFLICT (manga_id, category_id, user_id)")
}

func TestUpsertHistory_KeepsLastEntry(t *testing.T) {
	querier := &fakeQuerier{rowsAffected: 1}

	history := []History{{MangaID: 1, Page: 1}, {MangaID: 1, Page: 9}}
	require.NoError(t, newTestRepository().UpsertHistory(context.Background(), querier, 5, history))

	row := querier.arguments[0]
	require.Len(t, row, len(historyStatement.Columns))
	assert.Equal(t, int16(9), row[5])
}

/*
TestAdvanceSyncTimestamp covers both cursors, a missing user and an unknown kind.
*/
func TestAdvanceSyncTimestamp(t *testing.T) {
	t.Run("favourites", func(t *testing.T) {
		querier := &fakeQuerier{rowsAffected: 1}
		require.NoError(t, newTestRepository().AdvanceSyncTimestamp(context.Background(), querier, 3, KindFavourites, 1000))
		assert.Contains(t, querier.statements[0], "SET favourites_sync_timestamp = $1")
		assert.Equal(t, []any{int64(1000), int64(3)}, querier.arguments[0])
	})

	t.Run("history", func(t *testing.T) {
		querier := &fakeQuerier{rowsAffected: 1}
		require.NoError(t, newTestRepository().AdvanceSyncTimestamp(context.Background(), querier, 3, KindHistory, 2000))
		assert.Contains(t, querier.statements[0], "SET history_sync_timestamp = $1")
	})

	t.Run("missing user", func(t *testing.T) {
		err := newTestRepository().AdvanceSyncTimestamp(context.Background(), &fakeQuerier{}, 3, KindHistory, 2000)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("unknown kind", func(t *testing.T) {
		querier := &fakeQuerier{rowsAffected: 1}
		err := newTestRepository().AdvanceSyncTimestamp(context.Background(), querier, 3, Kind("bookmarks"), 1)
		assert.Error(t, err)
		assert.Empty(t, querier.statements)
	})
}
