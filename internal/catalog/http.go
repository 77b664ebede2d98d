// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/yomira-sync/internal/platform/request"
	"github.com/taibuivan/yomira-sync/internal/platform/respond"
	"github.com/taibuivan/yomira-sync/pkg/pagination"
)

// Handler serves the catalog browse endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts GET / and GET /{id} on router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listManga)
	router.Get("/{id}", handler.getManga)
}

func (handler *Handler) listManga(writer http.ResponseWriter, request *http.Request) {
	manga, err := handler.service.ListManga(request.Context(), pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, manga)
}

func (handler *Handler) getManga(writer http.ResponseWriter, request *http.Request) {
	mangaID, err := requestutil.Int64Param(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	manga, err := handler.service.GetManga(request.Context(), mangaID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, manga)
}
