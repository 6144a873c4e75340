package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/models"
	"github.com/eshitag/Dev-connector/internal/store"
	"github.com/eshitag/Dev-connector/internal/util"
)

// MaxAvatarSize caps uploaded avatar images.
const MaxAvatarSize = 2 << 20

// Store defines the interface for profile persistence.
type Store interface {
	Upsert(ctx context.Context, p *models.Profile) error
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
}

// UserStore resolves profile owners.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

var errAvatarTooLarge = apperr.Validation(apperr.Field("avatar", "avatar must be at most 2MB"))

// FileStore defines the interface for avatar image storage, keyed by user id.
type FileStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

type Service struct {
	profiles Store
	users    UserStore
	files    FileStore
	clock    util.Clock
}

func NewService(profiles Store, users UserStore, files FileStore, clock util.Clock) *Service {
	return &Service{profiles: profiles, users: users, files: files, clock: clock}
}

// Save creates or replaces the profile of userID.
func (s *Service) Save(ctx context.Context, userID string, req models.ProfileRequest) (*models.ProfileView, error) {
	var fields []apperr.FieldError
	if strings.TrimSpace(req.Status) == "" {
		fields = append(fields, apperr.Field("status", "Status is required"))
	}
	if len(req.Skills) == 0 {
		fields = append(fields, apperr.Field("skills", "Skills is required"))
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	p := &models.Profile{
		User:           userID,
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Skills:         req.Skills,
		Bio:            req.Bio,
		GitHubUsername: req.GitHubUsername,
		UpdatedAt:      s.clock.NowUtc(),
	}
	social := models.Social{
		YouTube:   req.YouTube,
		Twitter:   req.Twitter,
		Facebook:  req.Facebook,
		LinkedIn:  req.LinkedIn,
		Instagram: req.Instagram,
	}
	if social != (models.Social{}) {
		p.Social = &social
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

// Mine returns the profile of the authenticated user.
func (s *Service) Mine(ctx context.Context, userID string) (*models.ProfileView, error) {
	p, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &apperr.Error{Kind: apperr.KindValidation, Msg: "there is no profile for this user"}
		}
		return nil, err
	}
	return s.view(ctx, p)
}

// ByUser returns the profile owned by userID.
func (s *Service) ByUser(ctx context.Context, userID string) (*models.ProfileView, error) {
	p, err := s.profiles.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("profile not found")
		}
		return nil, err
	}
	return s.view(ctx, p)
}

// List returns every profile with its owner filled in. Profiles whose user
// no longer exists are skipped.
func (s *Service) List(ctx context.Context) ([]models.ProfileView, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.User)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		u, ok := users[p.User]
		if !ok {
			continue
		}
		views = append(views, models.ProfileView{Profile: p, User: owner(u)})
	}
	return views, nil
}

// Cards returns the summary card of every profile.
func (s *Service) Cards(ctx context.Context) ([]models.ProfileCard, error) {
	views, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	cards := make([]models.ProfileCard, 0, len(views))
	for _, v := range views {
		cards = append(cards, Card(v))
	}
	return cards, nil
}

// SetAvatar stores an uploaded image for userID.
func (s *Service) SetAvatar(ctx context.Context, userID string, r io.Reader, size int64, contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		return apperr.Validation(apperr.Field("avatar", "avatar must be an image"))
	}
	if size <= 0 {
		return apperr.Validation(apperr.Field("avatar", "avatar image is required"))
	}
	if size > MaxAvatarSize {
		return errAvatarTooLarge
	}
	return s.files.Upload(ctx, userID, r, size, contentType)
}

// Avatar returns the uploaded image of userID.
func (s *Service) Avatar(ctx context.Context, userID string) ([]byte, string, error) {
	data, ct, err := s.files.Download(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", apperr.NotFound("avatar not found")
		}
		return nil, "", err
	}
	return data, ct, nil
}

func (s *Service) view(ctx context.Context, p *models.Profile) (*models.ProfileView, error) {
	u, err := s.users.GetUserByID(ctx, p.User)
	if err != nil {
		return nil, fmt.Errorf("profile owner %s: %w", p.User, err)
	}
	return &models.ProfileView{Profile: *p, User: owner(u)}, nil
}

func owner(u *models.User) models.ProfileOwner {
	return models.ProfileOwner{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
