// Package storetest provides in-memory stand-ins for the database-backed
// stores, for use in tests.
package storetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eshitag/Dev-connector/internal/models"
	"github.com/eshitag/Dev-connector/internal/store"
)

// Users mirrors store.PostgresStore.
type Users struct {
	mu     sync.Mutex
	byID   map[string]models.User
	nextID int
}

func NewUsers() *Users {
	return &Users{byID: map[string]models.User{}}
}

func (s *Users) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return fmt.Errorf("create user %s: %w", u.Email, store.ErrDuplicate)
		}
	}
	s.nextID++
	u.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", s.nextID)
	s.byID[u.ID] = *u
	return nil
}

func (s *Users) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// GetUserByID leaves Password empty, as the real store does.
func (s *Users) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u.Password = ""
	return &u, nil
}

func (s *Users) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := map[string]*models.User{}
	for _, id := range ids {
		if u, err := s.GetUserByID(ctx, id); err == nil {
			out[id] = u
		}
	}
	return out, nil
}

// Posts mirrors store.MongoStore. Documents are copied in and out so
// callers cannot mutate stored state without calling Save.
type Posts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Post

	// Err, when set, is returned by every call.
	Err error
}

func NewPosts() *Posts {
	return &Posts{byID: map[primitive.ObjectID]models.Post{}}
}

func (s *Posts) Insert(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	post.ID = primitive.NewObjectID()
	s.byID[post.ID] = clonePost(*post)
	return nil
}

func (s *Posts) List(context.Context) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var posts []models.Post
	for _, p := range s.byID {
		posts = append(posts, clonePost(p))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *Posts) GetByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	p, ok := s.byID[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (s *Posts) Save(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	p, ok := s.byID[post.ID]
	if !ok {
		return store.ErrNotFound
	}
	p.Likes = append([]models.Like{}, post.Likes...)
	p.Comments = append([]models.Comment{}, post.Comments...)
	s.byID[post.ID] = p
	return nil
}

func (s *Posts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	if _, ok := s.byID[oid]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, oid)
	return nil
}

func clonePost(p models.Post) models.Post {
	p.Likes = append([]models.Like{}, p.Likes...)
	p.Comments = append([]models.Comment{}, p.Comments...)
	return p
}

// Profiles mirrors store.ProfileStore.
type Profiles struct {
	mu     sync.Mutex
	byUser map[string]models.Profile
}

func NewProfiles() *Profiles {
	return &Profiles{byUser: map[string]models.Profile{}}
}

func (s *Profiles) Upsert(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byUser[p.User]; ok {
		p.ID = existing.ID
	} else {
		p.ID = primitive.NewObjectID()
	}
	s.byUser[p.User] = *p
	return nil
}

func (s *Profiles) GetByUser(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byUser[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Profiles) List(context.Context) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var profiles []models.Profile
	for _, p := range s.byUser {
		profiles = append(profiles, p)
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].UpdatedAt.After(profiles[j].UpdatedAt)
	})
	return profiles, nil
}

type object struct {
	data        []byte
	contentType string
}

// Files mirrors store.MinioStore.
type Files struct {
	mu      sync.Mutex
	objects map[string]object
}

func NewFiles() *Files {
	return &Files{objects: map[string]object{}}
}

func (s *Files) Upload(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: data, contentType: contentType}
	return nil
}

func (s *Files) Download(_ context.Context, key string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return bytes.Clone(obj.data), obj.contentType, nil
}

// Revocations mirrors store.RevocationStore. Entries never expire.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func NewRevocations() *Revocations {
	return &Revocations{revoked: map[string]time.Duration{}}
}

func (s *Revocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = ttl
	return nil
}

func (s *Revocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}
