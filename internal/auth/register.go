package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/models"
	"github.com/eshitag/Dev-connector/internal/store"
	"github.com/eshitag/Dev-connector/internal/util"
)

const (
	minPasswordLen = 6
	// bcrypt only looks at this many bytes of input.
	maxBcryptInput = 72
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Registrar creates credential records.
type Registrar struct {
	users UserStore
	clock util.Clock
	cost  int

	// OnRegistered runs after the user is persisted. Nothing is hooked in by
	// default; a session token could be issued here. The user row already
	// exists when it runs, so its error is logged and the registration
	// still succeeds.
	OnRegistered func(ctx context.Context, u *models.User) error
}

func NewRegistrar(users UserStore, clock util.Clock) *Registrar {
	return &Registrar{users: users, clock: clock, cost: bcrypt.DefaultCost}
}

// Register validates req, rejects taken emails and stores a new user with
// a bcrypt hash of the password.
func (r *Registrar) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	var fields []apperr.FieldError
	if name == "" {
		fields = append(fields, apperr.Field("name", "name is required"))
	}
	if !emailRegex.MatchString(email) {
		fields = append(fields, apperr.Field("email", "please include a valid email"))
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		fields = append(fields, apperr.Field("password", "please enter a password with 6 more characters"))
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	existing, err := r.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}
	if existing != nil {
		return nil, userExists()
	}

	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(req.Password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		Avatar:    AvatarURL(email),
		CreatedAt: r.clock.NowUtc(),
	}
	if err := r.users.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, store.ErrDuplicate) {
			return nil, userExists()
		}
		return nil, err
	}

	if r.OnRegistered != nil {
		if err := r.OnRegistered(ctx, user); err != nil {
			log.Printf("post-registration hook for %s: %v", user.ID, err)
		}
	}
	return user, nil
}

// bcryptInput truncates a password to the bytes bcrypt hashes. Newer
// x/crypto rejects longer input instead of ignoring the tail, so register
// and login must both go through here.
func bcryptInput(password string) []byte {
	b := []byte(password)
	if len(b) > maxBcryptInput {
		b = b[:maxBcryptInput]
	}
	return b
}

func userExists() error {
	return &apperr.Error{
		Kind:   apperr.KindConflict,
		Fields: []apperr.FieldError{{Msg: "user already exist"}},
	}
}

// AvatarURL returns the Gravatar image URL for email: 200px, PG rated,
// "mystery man" fallback.
func AvatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
