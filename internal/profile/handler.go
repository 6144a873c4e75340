package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/auth"
	"github.com/eshitag/Dev-connector/internal/models"
)

// Handler holds profile HTTP handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the profile endpoints on r. requireAuth guards the routes
// that act on the caller's own profile.
func (h *Handler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/cards", h.Cards)
	r.Get("/user/{user_id}", h.ByUser)
	r.Get("/user/{user_id}/avatar", h.Avatar)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.Save)
		r.Get("/me", h.Mine)
		r.Put("/avatar", h.SetAvatar)
	})
}

// Save creates or updates the caller's profile.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.Validation(apperr.FieldError{Msg: "invalid request body"}))
		return
	}
	view, err := h.svc.Save(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Mine(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.List(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) Cards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.Cards(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, cards)
}

func (h *Handler) ByUser(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, view)
}

// SetAvatar stores the raw request body as the caller's avatar image.
// Bodies sent without a Content-Length are buffered up to MaxAvatarSize.
func (h *Handler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, MaxAvatarSize)
	size := r.ContentLength
	if size < 0 {
		data, err := io.ReadAll(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				apperr.Write(w, errAvatarTooLarge)
				return
			}
			apperr.Write(w, err)
			return
		}
		body, size = bytes.NewReader(data), int64(len(data))
	}
	err := h.svc.SetAvatar(r.Context(), auth.UserID(r.Context()), body, size, r.Header.Get("Content-Type"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"msg": "avatar updated"})
}

// Avatar streams a user's uploaded avatar image.
func (h *Handler) Avatar(w http.ResponseWriter, r *http.Request) {
	data, ct, err := h.svc.Avatar(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Write(data)
}
