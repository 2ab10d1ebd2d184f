package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nutriscan/nutriscan-go/internal/model"
	"github.com/nutriscan/nutriscan-go/internal/service"
)

// TokenHeader carries the session token on register and login responses.
const TokenHeader = "X-Auth-Token"

// HandleRegister handles POST /users/register requests.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCredentialsRequired), errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			h.internalError(w, r, err)
		}
		return
	}

	w.Header().Set(TokenHeader, res.Token)
	w.Header().Set("Location", "/users/"+strconv.FormatInt(res.User.ID, 10))
	writeJSON(w, http.StatusCreated, res.User)
}

// HandleLogin handles POST /users/login requests.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCredentialsRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrInvalidCredentials):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		default:
			h.internalError(w, r, err)
		}
		return
	}

	w.Header().Set(TokenHeader, res.Token)
	writeJSON(w, http.StatusOK, res.User)
}
