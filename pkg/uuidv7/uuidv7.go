// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuidv7 generates time-ordered UUIDv7 strings.
//
// Request IDs use v7 so log lines sort by creation time.
package uuidv7

import "github.com/google/uuid"

// New returns a UUIDv7 string.
//
// If the v7 clock sequence cannot be read it returns a random v4 instead;
// callers only need a unique value.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
