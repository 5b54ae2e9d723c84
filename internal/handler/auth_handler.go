// internal/handler/auth_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/auth"
)

type AuthHandler struct {
	Auth *auth.Service
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}
	if !strings.Contains(body.Email, "@") || body.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "email and password are required"})
		return
	}

	user, err := h.Auth.Register(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid body"})
		return
	}

	token, err := h.Auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		// Bad credentials are a 401 here, not the store's 404.
		if apperrors.IsNotFound(err) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "invalid email or password"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}
