// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate converts struct-tag validation failures into a single
// [apperr.AppError] carrying field-level details.
//
// # Architecture
//
// Rules live next to the payload types as `validate:"..."` tags and are
// evaluated by go-playground/validator. Field names in the details use the
// JSON names (with their path for nested values) so clients can map them back.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/taibuivan/yomira-sync/internal/platform/apperr"
)

var (
	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator wraps a configured *validator.Validate.
//
// # Concurrency
//
// Validator is safe for concurrent use; build one at startup and share it.
type Validator struct {
	engine *validator.Validate
}

// New creates a validator that reports JSON field names.
func New() *Validator {
	engine := validator.New(validator.WithRequiredStructEnabled())

	engine.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})

	return &Validator{engine: engine}
}

// Struct validates s and returns a VALIDATION_ERROR [apperr.AppError] on failure.
func (v *Validator) Struct(s any) error {
	err := v.engine.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperr.Internal(fmt.Errorf("validate: %w", err))
	}

	details := make([]apperr.FieldError, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details = append(details, apperr.FieldError{
			Field:   fieldPath(fieldErr),
			Message: friendlyMessage(fieldErr),
		})
	}

	return apperr.ValidationError("Validation failed", details...)
}

// fieldPath drops the root struct name from the namespace,
// e.g. "favouritesSnapshot.favourites[0].manga" -> "favourites[0].manga".
func fieldPath(fieldErr validator.FieldError) string {
	_, path, found := strings.Cut(fieldErr.Namespace(), ".")
	if !found {
		return fieldErr.Field()
	}
	return path
}

func friendlyMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Minimum %s characters", fieldErr.Param())
	case "max":
		return fmt.Sprintf("Maximum %s characters", fieldErr.Param())
	case "gte":
		return "Must be greater than or equal to " + fieldErr.Param()
	case "lte":
		return "Must be less than or equal to " + fieldErr.Param()
	case "oneof":
		return "Must be one of: " + fieldErr.Param()
	default:
		return "Is invalid"
	}
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
