package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/models"
	"github.com/eshitag/Dev-connector/internal/store"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	registrar *Registrar
	users     UserStore
	tokens    *Tokens
}

func NewHandler(registrar *Registrar, users UserStore, tokens *Tokens) *Handler {
	return &Handler{registrar: registrar, users: users, tokens: tokens}
}

func badBody() error {
	return apperr.Validation(apperr.FieldError{Msg: "invalid request body"})
}

func invalidCredentials() error {
	return apperr.Validation(apperr.FieldError{Msg: "invalid credentials"})
}

// Register creates a new user. It answers with a plain acknowledgement; the
// client logs in separately to obtain a token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, badBody())
		return
	}

	user, err := h.registrar.Register(r.Context(), req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	log.Printf("registered user %s", user.ID)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("user Registered"))
}

// Login checks the credentials and returns a signed bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, badBody())
		return
	}

	var fields []apperr.FieldError
	if !emailRegex.MatchString(strings.TrimSpace(req.Email)) {
		fields = append(fields, apperr.Field("email", "please include a valid email"))
	}
	if req.Password == "" {
		fields = append(fields, apperr.Field("password", "password is required"))
	}
	if len(fields) > 0 {
		apperr.Write(w, apperr.Validation(fields...))
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Write(w, invalidCredentials())
			return
		}
		apperr.Write(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), bcryptInput(req.Password)); err != nil {
		apperr.Write(w, invalidCredentials())
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}

// Logout revokes the token used for this request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	if claims == nil {
		apperr.Write(w, apperr.Unauthorized("no token, authorisation denied"))
		return
	}
	if err := h.tokens.Revoke(r.Context(), claims); err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"msg": "logged out"})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), UserID(r.Context()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.Write(w, apperr.NotFound("user not found"))
			return
		}
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, user)
}
