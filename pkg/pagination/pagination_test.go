// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestFromRequest covers defaults, clamping and the page-index offset.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
		wantSkip  int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "?limit=10&offset=3", 10, 30},
		{"limit above max", "?limit=500", MaxLimit, 0},
		{"limit below min", "?limit=0", MinLimit, 0},
		{"malformed limit", "?limit=abc&offset=1", DefaultLimit, DefaultLimit},
		{"negative offset", "?limit=5&offset=-2", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/manga"+tt.query, nil)
			params := FromRequest(request)

			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantSkip, params.Skip())
		})
	}
}
