package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/config"
	"github.com/dmitrijs2005/gophsocial/internal/client/feed"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	m map[string]string
}

func (r *memRepo) Get(_ context.Context, key string) (string, error) {
	v, ok := r.m[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (r *memRepo) Set(_ context.Context, key, value string) error {
	r.m[key] = value
	return nil
}

func (r *memRepo) Delete(_ context.Context, key string) error {
	delete(r.m, key)
	return nil
}

// fakeAPI implements client.Client; unset funcs panic so unexpected calls
// fail loudly.
type fakeAPI struct {
	health        func(ctx context.Context) error
	register      func(ctx context.Context, name, email, password string) (*models.User, error)
	login         func(ctx context.Context, email, password string) (*models.LoginResponse, error)
	getProfile    func(ctx context.Context, userID int64) (*models.User, error)
	updateProfile func(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error)
	uploadAvatar  func(ctx context.Context, f client.File) (*models.User, error)
	searchUsers   func(ctx context.Context, q string) ([]models.UserSummary, error)
	createPost    func(ctx context.Context, content string, image *client.File) (*models.Post, error)
	feed          func(ctx context.Context) ([]models.PostView, error)
	userPosts     func(ctx context.Context, userID int64) ([]models.PostView, error)
	deletePost    func(ctx context.Context, postID int64) error
	toggleLike    func(ctx context.Context, postID int64) (*models.LikeResult, error)
	comments      func(ctx context.Context, postID int64) ([]models.Comment, error)
	addComment    func(ctx context.Context, postID int64, content string) (*models.Comment, error)
	notifications func(ctx context.Context) ([]models.Notification, error)
	markRead      func(ctx context.Context) (int64, error)
}

func (f *fakeAPI) Health(ctx context.Context) error { return f.health(ctx) }
func (f *fakeAPI) Register(ctx context.Context, n, e, p string) (*models.User, error) {
	return f.register(ctx, n, e, p)
}
func (f *fakeAPI) Login(ctx context.Context, e, p string) (*models.LoginResponse, error) {
	return f.login(ctx, e, p)
}
func (f *fakeAPI) GetProfile(ctx context.Context, id int64) (*models.User, error) {
	return f.getProfile(ctx, id)
}
func (f *fakeAPI) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	return f.updateProfile(ctx, id, upd)
}
func (f *fakeAPI) UploadAvatar(ctx context.Context, file client.File) (*models.User, error) {
	return f.uploadAvatar(ctx, file)
}
func (f *fakeAPI) SearchUsers(ctx context.Context, q string) ([]models.UserSummary, error) {
	return f.searchUsers(ctx, q)
}
func (f *fakeAPI) CreatePost(ctx context.Context, c string, img *client.File) (*models.Post, error) {
	return f.createPost(ctx, c, img)
}
func (f *fakeAPI) Feed(ctx context.Context) ([]models.PostView, error) { return f.feed(ctx) }
func (f *fakeAPI) UserPosts(ctx context.Context, id int64) ([]models.PostView, error) {
	return f.userPosts(ctx, id)
}
func (f *fakeAPI) DeletePost(ctx context.Context, id int64) error { return f.deletePost(ctx, id) }
func (f *fakeAPI) ToggleLike(ctx context.Context, id int64) (*models.LikeResult, error) {
	return f.toggleLike(ctx, id)
}
func (f *fakeAPI) Comments(ctx context.Context, id int64) ([]models.Comment, error) {
	return f.comments(ctx, id)
}
func (f *fakeAPI) AddComment(ctx context.Context, id int64, c string) (*models.Comment, error) {
	return f.addComment(ctx, id, c)
}
func (f *fakeAPI) Notifications(ctx context.Context) ([]models.Notification, error) {
	return f.notifications(ctx)
}
func (f *fakeAPI) MarkNotificationsRead(ctx context.Context) (int64, error) { return f.markRead(ctx) }

type testApp struct {
	*App
	api  *fakeAPI
	repo *memRepo
	out  *bytes.Buffer
}

func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()
	logger, err := logging.New(logging.BackendSlog, "error", io.Discard)
	require.NoError(t, err)

	repo := &memRepo{m: map[string]string{}}
	store := session.NewStore(repo)
	require.NoError(t, store.Load(context.Background()))

	api := &fakeAPI{}
	out := &bytes.Buffer{}
	return &testApp{
		App: &App{
			config:  &config.Config{ServerURL: "http://srv:8080"},
			api:     api,
			session: store,
			feed:    feed.New(),
			logger:  logger,
			reader:  bufio.NewReader(strings.NewReader(strings.Join(input, "\n") + "\n")),
			out:     out,
		},
		api:  api,
		repo: repo,
		out:  out,
	}
}

func testToken(t *testing.T, userID int64, name string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"name":    name,
		"email":   name + "@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

// loggedIn puts the app in the authenticated state as user 7 "alice".
func (ta *testApp) loggedIn(t *testing.T) *testApp {
	t.Helper()
	require.NoError(t, ta.session.Login(context.Background(), testToken(t, 7, "alice")))
	return ta
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { return pw, nil }
	t.Cleanup(func() { getPassword = orig })
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i] = strings.TrimSpace(strings.TrimSuffix(fmtAny(v), "\n"))
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func fmtAny(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	}
	return ""
}

func str(s string) *string { return &s }

func post(id, likes int64, liked bool, author, text string) models.PostView {
	return models.PostView{
		Post:       models.Post{ID: id, UserID: 7, Content: str(text)},
		AuthorName: author,
		TotalLikes: likes,
		LikedByMe:  liked,
	}
}
