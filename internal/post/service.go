package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/models"
	"github.com/eshitag/Dev-connector/internal/store"
	"github.com/eshitag/Dev-connector/internal/util"
)

// Store defines the interface for post persistence.
type Store interface {
	Insert(ctx context.Context, post *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// UserLookup resolves the author details copied onto posts and comments.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Service implements posts, likes and comments. Every mutation is a read
// followed by a write with no transaction around them, so two concurrent
// requests on the same post can both pass a check before either write lands.
type Service struct {
	posts Store
	users UserLookup
	clock util.Clock
}

func NewService(posts Store, users UserLookup, clock util.Clock) *Service {
	return &Service{posts: posts, users: users, clock: clock}
}

var errTextRequired = apperr.Validation(apperr.Field("text", "Text is required"))

// Create stores a new post authored by userID.
func (s *Service) Create(ctx context.Context, userID, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errTextRequired
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		User:      userID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []models.Like{},
		Comments:  []models.Comment{},
		CreatedAt: s.clock.NowUtc(),
	}
	if err := s.posts.Insert(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Get returns one post. Malformed ids are reported as not found.
func (s *Service) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Only its author may do so.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.User != userID {
		return apperr.Forbidden("user not authorised")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("post not found")
		}
		return err
	}
	return nil
}

// Like puts userID at the front of the post's likes.
func (s *Service) Like(ctx context.Context, userID, id string) ([]models.Like, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if likeIndex(post.Likes, userID) >= 0 {
		return nil, apperr.Conflict("post already liked")
	}

	post.Likes = append([]models.Like{{User: userID}}, post.Likes...)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Unlike removes userID's like from the post.
func (s *Service) Unlike(ctx context.Context, userID, id string) ([]models.Like, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	i := likeIndex(post.Likes, userID)
	if i < 0 {
		return nil, apperr.Conflict("post has not yet been liked")
	}

	post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Comment puts a new comment by userID at the front of the post's comments
// and returns the whole post.
func (s *Service) Comment(ctx context.Context, userID, id, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errTextRequired
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: s.clock.NowUtc(),
	}
	post.Comments = append([]models.Comment{comment}, post.Comments...)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Uncomment deletes the comment with commentID. Only its author may do so.
func (s *Service) Uncomment(ctx context.Context, userID, id, commentID string) ([]models.Comment, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	i := -1
	for j, c := range post.Comments {
		if c.ID.Hex() == commentID {
			i = j
			break
		}
	}
	if i < 0 {
		return nil, apperr.NotFound("comment does not exist")
	}
	if post.Comments[i].User != userID {
		return nil, apperr.Forbidden("unauthorised user")
	}

	post.Comments = append(post.Comments[:i], post.Comments[i+1:]...)
	if err := s.save(ctx, post); err != nil {
		return nil, err
	}
	return post.Comments, nil
}

func (s *Service) author(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("lookup user %s: %w", userID, err)
	}
	return user, nil
}

func (s *Service) save(ctx context.Context, post *models.Post) error {
	if err := s.posts.Save(ctx, post); err != nil {
		// deleted between our read and write
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("post not found")
		}
		return err
	}
	return nil
}

func likeIndex(likes []models.Like, userID string) int {
	for i, l := range likes {
		if l.User == userID {
			return i
		}
	}
	return -1
}
