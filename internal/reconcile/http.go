// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reconcile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-sync/internal/collection"
	requestutil "github.com/taibuivan/yomira-sync/internal/platform/request"
	"github.com/taibuivan/yomira-sync/internal/platform/respond"
	"github.com/taibuivan/yomira-sync/internal/platform/validate"
)

// Handler serves the snapshot fetch and submit endpoints.
type Handler struct {
	reconciler *Reconciler
	validator  *validate.Validator
}

// NewHandler constructs a [Handler].
func NewHandler(reconciler *Reconciler, validator *validate.Validator) *Handler {
	return &Handler{reconciler: reconciler, validator: validator}
}

// RegisterRoutes mounts /favourites and /history on router. Both require an
// authenticated user.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/favourites", handler.getFavourites)
	router.Post("/favourites", handler.syncFavourites)
	router.Get("/history", handler.getHistory)
	router.Post("/history", handler.syncHistory)
}

func (handler *Handler) getFavourites(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.reconciler.GetFavourites(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}
	respond.JSON(writer, http.StatusOK, snapshot)
}

func (handler *Handler) syncFavourites(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var incoming collection.FavouritesSnapshot
	if err := requestutil.DecodeJSON(request, &incoming); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := handler.validator.Struct(incoming); err != nil {
		respond.Error(writer, request, err)
		return
	}

	merged, changed, err := handler.reconciler.SyncFavourites(request.Context(), userID, incoming)
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}
	if !changed {
		respond.NoContent(writer)
		return
	}
	respond.JSON(writer, http.StatusOK, merged)
}

func (handler *Handler) getHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.reconciler.GetHistory(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}
	respond.JSON(writer, http.StatusOK, snapshot)
}

func (handler *Handler) syncHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var incoming collection.HistorySnapshot
	if err := requestutil.DecodeJSON(request, &incoming); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := handler.validator.Struct(incoming); err != nil {
		respond.Error(writer, request, err)
		return
	}

	merged, changed, err := handler.reconciler.SyncHistory(request.Context(), userID, incoming)
	if err != nil {
		respond.Error(writer, request, ToAppError(err))
		return
	}
	if !changed {
		respond.NoContent(writer)
		return
	}
	respond.JSON(writer, http.StatusOK, merged)
}
