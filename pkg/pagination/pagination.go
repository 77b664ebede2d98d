// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// Reader clients page with "limit" and "offset", where offset is a page index
// rather than a row count: the rows skipped are offset * limit.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
	// MinLimit is the lower bound for items per page.
	MinLimit = 1
)

// Params holds the parsed limit and page offset from a request's query string.
type Params struct {
	Limit  int
	Offset int
}

// Skip returns the SQL OFFSET value derived from [Offset] and [Limit].
func (p Params) Skip() int {
	return p.Offset * p.Limit
}

// FromRequest parses "limit" and "offset" query parameters from an HTTP request.
//
// # Clamping
//
// A missing or malformed limit becomes [DefaultLimit]; out-of-range limits are
// clamped to [MinLimit]..[MaxLimit]. A missing, malformed or negative offset is 0.
func FromRequest(r *http.Request) Params {
	limit := parseIntParam(r, "limit", DefaultLimit)
	offset := parseIntParam(r, "offset", 0)

	limit = min(max(limit, MinLimit), MaxLimit)
	offset = max(offset, 0)

	return Params{Limit: limit, Offset: offset}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
