package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/models"
	"github.com/eshitag/Dev-connector/internal/store/storetest"
	"github.com/eshitag/Dev-connector/internal/util"
)

func newTestRegistrar() (*Registrar, *storetest.Users, *util.StubClock) {
	users := storetest.NewUsers()
	clock := util.NewStubClock()
	r := NewRegistrar(users, clock)
	r.cost = bcrypt.MinCost
	return r, users, clock
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	r, users, clock := newTestRegistrar()

	req := models.RegisterRequest{
		Name:     gofakeit.Name(),
		Email:    "a@x.com",
		Password: "secret1",
	}
	user, err := r.Register(ctx, req)
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, clock.NowUtc(), user.CreatedAt)
	require.Equal(t, AvatarURL("a@x.com"), user.Avatar)

	stored, err := users.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, req.Name, stored.Name)
	require.NotEqual(t, req.Password, stored.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(req.Password)))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestRegistrar()

	_, err := r.Register(ctx, models.RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = r.Register(ctx, models.RegisterRequest{Name: "B", Email: "a@x.com", Password: "another-secret"})
	require.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	require.EqualError(t, err, "user already exist")
}

func TestRegisterReportsEveryViolation(t *testing.T) {
	r, users, _ := newTestRegistrar()

	_, err := r.Register(context.Background(), models.RegisterRequest{
		Name:     " ",
		Email:    "not-an-email",
		Password: "12345",
	})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, apperr.KindValidation, appErr.Kind)

	var params []string
	for _, f := range appErr.Fields {
		params = append(params, f.Param)
	}
	require.Equal(t, []string{"name", "email", "password"}, params)

	_, err = users.GetUserByEmail(context.Background(), "not-an-email")
	require.Error(t, err)
}

func TestRegisterAcceptsSixCharacterPassword(t *testing.T) {
	r, _, _ := newTestRegistrar()

	_, err := r.Register(context.Background(), models.RegisterRequest{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: "123456",
	})
	require.NoError(t, err)
}

func TestRegisterHook(t *testing.T) {
	r, _, _ := newTestRegistrar()
	var hooked *models.User
	r.OnRegistered = func(_ context.Context, u *models.User) error {
		hooked = u
		return nil
	}

	user, err := r.Register(context.Background(), models.RegisterRequest{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 10),
	})
	require.NoError(t, err)
	require.Same(t, user, hooked)
}

func TestRegisterHookFailureKeepsUser(t *testing.T) {
	ctx := context.Background()
	r, users, _ := newTestRegistrar()
	r.OnRegistered = func(context.Context, *models.User) error {
		return errors.New("token service down")
	}

	email := gofakeit.Email()
	user, err := r.Register(ctx, models.RegisterRequest{Name: gofakeit.Name(), Email: email, Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	stored, err := users.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
}

func TestRegisterPasswordLongerThanBcryptLimit(t *testing.T) {
	ctx := context.Background()
	r, users, _ := newTestRegistrar()
	password := strings.Repeat("p", 80)

	_, err := r.Register(ctx, models.RegisterRequest{Name: "A", Email: "long@x.com", Password: password})
	require.NoError(t, err)

	stored, err := users.GetUserByEmail(ctx, "long@x.com")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), bcryptInput(password)))
	require.Len(t, bcryptInput(password), maxBcryptInput)
	require.Equal(t, []byte("short"), bcryptInput("short"))
}

func TestAvatarURLIsDeterministic(t *testing.T) {
	require.Equal(t, AvatarURL("a@x.com"), AvatarURL("a@x.com"))
	require.Equal(t, AvatarURL("a@x.com"), AvatarURL(" A@X.com "))
	require.NotEqual(t, AvatarURL("a@x.com"), AvatarURL("b@x.com"))
	require.Equal(t,
		"//www.gravatar.com/avatar/d41d8cd98f00b204e9800998ecf8427e?s=200&r=pg&d=mm",
		AvatarURL(""))
}
