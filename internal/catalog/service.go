// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"

	"github.com/taibuivan/yomira-sync/pkg/pagination"
)

// # Service Layer

// Service exposes the read-only browse operations of the catalog.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

/*
ListManga returns one page of the catalog.

Parameters:
  - context: context.Context
  - params: pagination.Params (limit and page offset, already clamped)

Returns:
  - []Manga: at most params.Limit entries ordered by id, tags attached
  - error: repository errors
*/
func (service *Service) ListManga(context context.Context, params pagination.Params) ([]Manga, error) {
	return service.repository.List(context, params.Limit, params.Skip())
}

// GetManga returns one manga by id, or a NOT_FOUND error.
func (service *Service) GetManga(context context.Context, id int64) (*Manga, error) {
	return service.repository.FindByID(context, id)
}
