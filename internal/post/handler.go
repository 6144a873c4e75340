package post

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/auth"
	"github.com/eshitag/Dev-connector/internal/models"
)

// Handler holds post HTTP handlers. Every route runs behind the auth guard.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the post endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Put("/like/{id}", h.Like)
	r.Put("/unlike/{id}", h.Unlike)
	r.Post("/comment/{id}", h.Comment)
	r.Delete("/comment/{id}/{comment_id}", h.Uncomment)
}

func decodeText(r *http.Request) (string, error) {
	var req models.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", apperr.Validation(apperr.FieldError{Msg: "invalid request body"})
	}
	return req.Text, nil
}

// Create adds a post by the current user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	text, err := decodeText(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	post, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), text)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, post)
}

// List returns all posts, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"msg": "Post removed"})
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.svc.Like(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, likes)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	likes, err := h.svc.Unlike(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, likes)
}

// Comment adds a comment and returns the updated post.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	text, err := decodeText(r)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	post, err := h.svc.Comment(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), text)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, post)
}

// Uncomment deletes a comment and returns the remaining comments.
func (h *Handler) Uncomment(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Uncomment(r.Context(), auth.UserID(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, comments)
}
