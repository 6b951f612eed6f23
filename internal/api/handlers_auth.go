package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sheikh-riyadh/due-sample-server/internal/api/respond"
	"github.com/sheikh-riyadh/due-sample-server/internal/api/validate"
	"github.com/sheikh-riyadh/due-sample-server/internal/auth"
	"github.com/sheikh-riyadh/due-sample-server/internal/services"
)

type AuthHandler struct {
	svc     *services.AuthService
	cookies auth.CookiePolicy
	log     zerolog.Logger
}

func NewAuthHandler(svc *services.AuthService, cookies auth.CookiePolicy, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, cookies: cookies, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, validate.MaxBodyBytes)).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	token, expires, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.cookies.Set(w, token, expires)
	respond.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}

// Logout handles POST /logout. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	respond.WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
