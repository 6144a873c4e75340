package post_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/eshitag/Dev-connector/internal/apperr"
	"github.com/eshitag/Dev-connector/internal/models"
	"github.com/eshitag/Dev-connector/internal/post"
	"github.com/eshitag/Dev-connector/internal/store/storetest"
	"github.com/eshitag/Dev-connector/internal/util"
)

type testEnv struct {
	svc   *post.Service
	posts *storetest.Posts
	users *storetest.Users
	clock *util.StubClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		posts: storetest.NewPosts(),
		users: storetest.NewUsers(),
		clock: util.NewStubClock(),
	}
	env.svc = post.NewService(env.posts, env.users, env.clock)
	return env
}

func (env *testEnv) newUser(t *testing.T) *models.User {
	t.Helper()
	u := &models.User{
		Name:   gofakeit.Name(),
		Email:  gofakeit.Email(),
		Avatar: gofakeit.URL(),
	}
	require.NoError(t, env.users.CreateUser(context.Background(), u))
	return u
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperr.Is(err, kind), "got %v", err)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "hello")
	require.NoError(t, err)
	require.False(t, p.ID.IsZero())
	require.Equal(t, author.ID, p.User)
	require.Equal(t, author.Name, p.Name)
	require.Equal(t, author.Avatar, p.Avatar)
	require.Equal(t, env.clock.NowUtc(), p.CreatedAt)
	require.Empty(t, p.Likes)
	require.Empty(t, p.Comments)
	require.NotNil(t, p.Likes)

	stored, err := env.svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "hello", stored.Text)
}

func TestCreateRequiresText(t *testing.T) {
	env := newTestEnv(t)
	author := env.newUser(t)

	_, err := env.svc.Create(context.Background(), author.ID, "   ")
	requireKind(t, err, apperr.KindValidation)

	posts, err := env.svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)

	empty, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, empty)

	first, err := env.svc.Create(ctx, author.ID, "first")
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	second, err := env.svc.Create(ctx, author.ID, "second")
	require.NoError(t, err)

	posts, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, second.ID, posts[0].ID)
	require.Equal(t, first.ID, posts[1].ID)
}

func TestGetMissingAndMalformed(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Get(context.Background(), "5d0a7f1c2b3e4a5f6a7b8c9d")
	requireKind(t, err, apperr.KindNotFound)

	_, err = env.svc.Get(context.Background(), "not-an-id")
	requireKind(t, err, apperr.KindNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)
	other := env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "mine")
	require.NoError(t, err)

	err = env.svc.Delete(ctx, other.ID, p.ID.Hex())
	requireKind(t, err, apperr.KindForbidden)
	unchanged, err := env.svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, p.Text, unchanged.Text)

	require.NoError(t, env.svc.Delete(ctx, author.ID, p.ID.Hex()))
	_, err = env.svc.Get(ctx, p.ID.Hex())
	requireKind(t, err, apperr.KindNotFound)

	err = env.svc.Delete(ctx, author.ID, p.ID.Hex())
	requireKind(t, err, apperr.KindNotFound)
}

func TestLikeTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)
	fan := env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "hello")
	require.NoError(t, err)

	likes, err := env.svc.Like(ctx, fan.ID, p.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, []models.Like{{User: fan.ID}}, likes)

	_, err = env.svc.Like(ctx, fan.ID, p.ID.Hex())
	requireKind(t, err, apperr.KindConflict)
	require.EqualError(t, err, "post already liked")

	stored, err := env.svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, stored.Likes, 1)
}

func TestLikeIsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)
	a, b := env.newUser(t), env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "hello")
	require.NoError(t, err)
	_, err = env.svc.Like(ctx, a.ID, p.ID.Hex())
	require.NoError(t, err)
	likes, err := env.svc.Like(ctx, b.ID, p.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, []models.Like{{User: b.ID}, {User: a.ID}}, likes)
}

func TestUnlikeRestoresPreviousState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)
	a, b := env.newUser(t), env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "hello")
	require.NoError(t, err)
	before, err := env.svc.Like(ctx, a.ID, p.ID.Hex())
	require.NoError(t, err)

	_, err = env.svc.Like(ctx, b.ID, p.ID.Hex())
	require.NoError(t, err)
	after, err := env.svc.Unlike(ctx, b.ID, p.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, before, after)

	after, err = env.svc.Unlike(ctx, a.ID, p.ID.Hex())
	require.NoError(t, err)
	require.Empty(t, after)
	require.NotNil(t, after)
}

func TestUnlikeWithoutLike(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "hello")
	require.NoError(t, err)

	_, err = env.svc.Unlike(ctx, author.ID, p.ID.Hex())
	requireKind(t, err, apperr.KindConflict)
	require.EqualError(t, err, "post has not yet been liked")
}

func TestLikeMissingPost(t *testing.T) {
	env := newTestEnv(t)
	u := env.newUser(t)

	_, err := env.svc.Like(context.Background(), u.ID, "5d0a7f1c2b3e4a5f6a7b8c9d")
	requireKind(t, err, apperr.KindNotFound)
	_, err = env.svc.Unlike(context.Background(), u.ID, "garbage")
	requireKind(t, err, apperr.KindNotFound)
}

func TestCommentPrepends(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)
	commenter := env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "hello")
	require.NoError(t, err)

	_, err = env.svc.Comment(ctx, author.ID, p.ID.Hex(), "A")
	require.NoError(t, err)
	updated, err := env.svc.Comment(ctx, commenter.ID, p.ID.Hex(), "B")
	require.NoError(t, err)

	require.Len(t, updated.Comments, 2)
	require.Equal(t, "B", updated.Comments[0].Text)
	require.Equal(t, commenter.ID, updated.Comments[0].User)
	require.Equal(t, commenter.Name, updated.Comments[0].Name)
	require.Equal(t, commenter.Avatar, updated.Comments[0].Avatar)
	require.Equal(t, "A", updated.Comments[1].Text)
	require.NotEqual(t, updated.Comments[0].ID, updated.Comments[1].ID)
}

func TestCommentValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.newUser(t)

	p, err := env.svc.Create(ctx, u.ID, "hello")
	require.NoError(t, err)

	_, err = env.svc.Comment(ctx, u.ID, p.ID.Hex(), "")
	requireKind(t, err, apperr.KindValidation)

	_, err = env.svc.Comment(ctx, u.ID, "5d0a7f1c2b3e4a5f6a7b8c9d", "hi")
	requireKind(t, err, apperr.KindNotFound)
}

func TestUncommentRemovesRequestedComment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	u := env.newUser(t)

	p, err := env.svc.Create(ctx, u.ID, "hello")
	require.NoError(t, err)
	for _, text := range []string{"one", "two", "three"} {
		p, err = env.svc.Comment(ctx, u.ID, p.ID.Hex(), text)
		require.NoError(t, err)
	}
	// comments are now three, two, one; delete the middle one
	target := p.Comments[1]
	require.Equal(t, "two", target.Text)

	comments, err := env.svc.Uncomment(ctx, u.ID, p.ID.Hex(), target.ID.Hex())
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "three", comments[0].Text)
	require.Equal(t, "one", comments[1].Text)
}

func TestUncommentErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	author := env.newUser(t)
	other := env.newUser(t)

	p, err := env.svc.Create(ctx, author.ID, "hello")
	require.NoError(t, err)
	p, err = env.svc.Comment(ctx, author.ID, p.ID.Hex(), "note")
	require.NoError(t, err)
	commentID := p.Comments[0].ID.Hex()

	_, err = env.svc.Uncomment(ctx, other.ID, p.ID.Hex(), commentID)
	requireKind(t, err, apperr.KindForbidden)

	_, err = env.svc.Uncomment(ctx, author.ID, p.ID.Hex(), "5d0a7f1c2b3e4a5f6a7b8c9d")
	requireKind(t, err, apperr.KindNotFound)
	require.EqualError(t, err, "comment does not exist")

	_, err = env.svc.Uncomment(ctx, author.ID, "5d0a7f1c2b3e4a5f6a7b8c9d", commentID)
	requireKind(t, err, apperr.KindNotFound)

	stored, err := env.svc.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)
}

func TestStoreFailureIsInternal(t *testing.T) {
	env := newTestEnv(t)
	env.posts.Err = errors.New("connection refused")

	_, err := env.svc.List(context.Background())
	require.Error(t, err)
	var appErr *apperr.Error
	require.False(t, errors.As(err, &appErr))
}
