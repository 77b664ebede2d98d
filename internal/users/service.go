// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/yomira-sync/internal/platform/apperr"
	"github.com/taibuivan/yomira-sync/internal/platform/sec"
)

// TokenProvider issues signed access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID int64, timeToLive time.Duration) (string, error)
}

// Service implements the account use cases.
type Service struct {
	repository        Repository
	tokens            TokenProvider
	tokenTTL          time.Duration
	allowRegistration bool
}

// NewService constructs a [Service].
func NewService(repository Repository, tokens TokenProvider, tokenTTL time.Duration, allowRegistration bool) *Service {
	return &Service{
		repository:        repository,
		tokens:            tokens,
		tokenTTL:          tokenTTL,
		allowRegistration: allowRegistration,
	}
}

// errInvalidCredentials is deliberately the same for unknown emails and wrong passwords.
var errInvalidCredentials = apperr.Unauthorized("Incorrect email or password")

/*
Authenticate exchanges credentials for an access token.

Description: An unknown email creates the account when registration is
enabled; otherwise it fails like a wrong password. The password is checked
in both cases, so a freshly created account authenticates immediately.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - string: signed access token
  - error: UNAUTHORIZED on bad credentials, INTERNAL_ERROR otherwise
*/
func (service *Service) Authenticate(context context.Context, email, password string) (string, error) {
	user, err := service.getOrCreate(context, email, password)
	if err != nil {
		return "", err
	}

	if err := sec.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, sec.ErrPasswordMismatch) {
			return "", errInvalidCredentials
		}
		return "", apperr.Internal(err)
	}

	token, err := service.tokens.GenerateAccessToken(user.ID, service.tokenTTL)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("users: issue token: %w", err))
	}

	return token, nil
}

func (service *Service) getOrCreate(context context.Context, email, password string) (*User, error) {
	user, err := service.repository.FindByEmail(context, email)
	if err == nil {
		return user, nil
	}

	if appError := apperr.As(err); appError == nil || appError.Code != "NOT_FOUND" {
		return nil, err
	}

	if !service.allowRegistration {
		return nil, errInvalidCredentials
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return service.repository.Create(context, email, hash)
}

// Me returns the account behind an authenticated user id.
// A token whose user no longer exists is treated as unauthenticated.
func (service *Service) Me(context context.Context, userID int64) (*User, error) {
	user, err := service.repository.FindByID(context, userID)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			return nil, apperr.Unauthorized("User not found").WithCause(err)
		}
		return nil, err
	}
	return user, nil
}
