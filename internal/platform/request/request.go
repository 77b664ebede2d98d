// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-sync/internal/platform/apperr"
	"github.com/taibuivan/yomira-sync/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-sync/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: apperr PAYLOAD_TOO_LARGE when the body exceeded the configured cap,
    validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge(tooLarge.Limit)
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Int64Param parses a named URL parameter as a base-10 int64.

Returns:
  - error: VALIDATION_ERROR naming the parameter when it is not a number
*/
func Int64Param(request *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil {
		return 0, validate.RequiredError(name, "Must be an integer")
	}
	return value, nil
}

/*
RequiredUserID returns the user id carried by the verified token.

Returns:
  - int64: user id from the "user_id" claim
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredUserID(request *http.Request) (int64, error) {
	userID, ok := ctxutil.GetUserID(request.Context())
	if !ok {
		return 0, apperr.Unauthorized("Authentication required")
	}
	return userID, nil
}
