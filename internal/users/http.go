// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-sync/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-sync/internal/platform/request"
	"github.com/taibuivan/yomira-sync/internal/platform/respond"
	"github.com/taibuivan/yomira-sync/internal/platform/validate"
)

// Handler serves /auth and /me.
type Handler struct {
	service   *Service
	validator *validate.Validator
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service, validator *validate.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

// RegisterRoutes mounts the account routes.
//
// # Endpoints
//   - POST /auth : exchanges credentials for a token (public)
//   - GET  /me   : returns the authenticated account
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth", handler.authenticate)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})
}

type authRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,max=32"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (handler *Handler) authenticate(writer http.ResponseWriter, request *http.Request) {
	var input authRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := handler.validator.Struct(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.service.Authenticate(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, authResponse{Token: token})
}

func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.JSON(writer, http.StatusOK, user)
}
