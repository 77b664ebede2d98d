// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-sync/internal/collection"
	"github.com/taibuivan/yomira-sync/internal/platform/config"
	"github.com/taibuivan/yomira-sync/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-sync/internal/platform/sec"
	"github.com/taibuivan/yomira-sync/internal/platform/validate"
)

func newTestRouter(f *fixture) chi.Router {
	router := chi.NewRouter()
	router.Route("/resource", NewHandler(f.reconciler, validate.New()).RegisterRoutes)
	return router
}

func authedRequest(method, target string, body []byte, userID int64) *http.Request {
	request := httptest.NewRequest(method, target, bytes.NewReader(body))
	if userID != 0 {
		claims := &sec.AuthClaims{UserID: userID}
		request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	}
	return request
}

/*
TestHandler_SyncFavourites returns the merged snapshot, then 204 for an
identical resubmission.
*/
func TestHandler_SyncFavourites(t *testing.T) {
	f := newFixture(config.CursorPolicyLegacy)
	router := newTestRouter(f)

	body, err := json.Marshal(scenarioPayload())
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/resource/favourites", body, userA))
	require.Equal(t, http.StatusOK, recorder.Code)

	var merged collection.FavouritesSnapshot
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &merged))
	assert.Equal(t, int64(1000), merged.Timestamp)
	require.Len(t, merged.Favourites, 1)
	assert.Equal(t, int64(42), merged.Favourites[0].Manga.ID)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodPost, "/resource/favourites", body, userA))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, recorder.Body.Bytes())
}

/*
TestHandler_Errors covers the failure responses of the sync endpoints.
*/
func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		userID     int64
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated fetch", http.MethodGet, "/resource/favourites", "", 0, 401, "UNAUTHORIZED"},
		{"unauthenticated submit", http.MethodPost, "/resource/history", `{}`, 0, 401, "UNAUTHORIZED"},
		{"malformed body", http.MethodPost, "/resource/favourites", `{"categories":`, userA, 400, "VALIDATION_ERROR"},
		{"negative tombstone", http.MethodPost, "/resource/history", `{"history":[{"manga_id":1,"deleted_at":-1}]}`, userA, 400, "VALIDATION_ERROR"},
		{"unknown user", http.MethodPost, "/resource/history", `{"history":[]}`, 404, 401, "UNAUTHORIZED"},
		{"unknown category", http.MethodPost, "/resource/favourites", `{"favourites":[{"manga_id":1,"category_id":9}]}`, userA, 500, "SYNC_TRANSACTION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(newFixture(config.CursorPolicyLegacy))

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, authedRequest(tt.method, tt.target, []byte(tt.body), tt.userID))

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantCode, envelope["code"])
		})
	}
}

func TestHandler_GetHistory(t *testing.T) {
	router := newTestRouter(newFixture(config.CursorPolicyLegacy))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, authedRequest(http.MethodGet, "/resource/history", nil, userA))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"history":[],"timestamp":1760000000}`, recorder.Body.String())
}
