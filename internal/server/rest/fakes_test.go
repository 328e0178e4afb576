package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/stretchr/testify/require"
)

const testSecret = "rest-secret"

type fakeUsers struct {
	register      func(name, email, password string) (*models.UserSummary, error)
	login         func(email, password string) (*services.LoginResult, error)
	getProfile    func(userID int64) (*models.User, error)
	updateProfile func(id models.Identity, targetID int64, upd models.ProfileUpdate) (*models.User, error)
	updateAvatar  func(id models.Identity, file *services.FileUpload) (*models.User, error)
	search        func(id models.Identity, q string) ([]models.UserSummary, error)
}

func (f *fakeUsers) Register(_ context.Context, name, email, password string) (*models.UserSummary, error) {
	return f.register(name, email, password)
}
func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	return f.login(email, password)
}
func (f *fakeUsers) GetProfile(_ context.Context, userID int64) (*models.User, error) {
	return f.getProfile(userID)
}
func (f *fakeUsers) UpdateProfile(_ context.Context, id models.Identity, targetID int64, upd models.ProfileUpdate) (*models.User, error) {
	return f.updateProfile(id, targetID, upd)
}
func (f *fakeUsers) UpdateAvatar(_ context.Context, id models.Identity, file *services.FileUpload) (*models.User, error) {
	return f.updateAvatar(id, file)
}
func (f *fakeUsers) Search(_ context.Context, id models.Identity, q string) ([]models.UserSummary, error) {
	return f.search(id, q)
}

type fakePosts struct {
	create    func(id models.Identity, content string, image *services.FileUpload) (*models.Post, error)
	feed      func(viewerID int64) ([]models.PostView, error)
	userPosts func(viewerID, userID int64) ([]models.PostView, error)
	del       func(id models.Identity, postID int64) error
	toggle    func(id models.Identity, postID int64) (*models.LikeResult, error)
}

func (f *fakePosts) CreatePost(_ context.Context, id models.Identity, content string, image *services.FileUpload) (*models.Post, error) {
	return f.create(id, content, image)
}
func (f *fakePosts) ListFeed(_ context.Context, viewerID int64) ([]models.PostView, error) {
	return f.feed(viewerID)
}
func (f *fakePosts) ListUserPosts(_ context.Context, viewerID, userID int64) ([]models.PostView, error) {
	return f.userPosts(viewerID, userID)
}
func (f *fakePosts) DeletePost(_ context.Context, id models.Identity, postID int64) error {
	return f.del(id, postID)
}
func (f *fakePosts) ToggleLike(_ context.Context, id models.Identity, postID int64) (*models.LikeResult, error) {
	return f.toggle(id, postID)
}

type fakeComments struct {
	list   func(id models.Identity, postID int64) ([]models.CommentView, error)
	create func(id models.Identity, postID int64, content string) (*models.CommentView, error)
}

func (f *fakeComments) List(_ context.Context, id models.Identity, postID int64) ([]models.CommentView, error) {
	return f.list(id, postID)
}
func (f *fakeComments) Create(_ context.Context, id models.Identity, postID int64, content string) (*models.CommentView, error) {
	return f.create(id, postID, content)
}

type fakeNotifications struct {
	list     func(id models.Identity) ([]models.NotificationView, error)
	markRead func(id models.Identity) (int64, error)
}

func (f *fakeNotifications) List(_ context.Context, id models.Identity) ([]models.NotificationView, error) {
	return f.list(id)
}
func (f *fakeNotifications) MarkRead(_ context.Context, id models.Identity) (int64, error) {
	return f.markRead(id)
}

type testEnv struct {
	users         *fakeUsers
	posts         *fakePosts
	comments      *fakeComments
	notifications *fakeNotifications
	handler       http.Handler
	srv           *Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = testSecret
	cfg.MaxUploadSize = 1 << 10
	cfg.AllowedOrigins = []string{"http://localhost:8081"}

	env := &testEnv{
		users:         &fakeUsers{},
		posts:         &fakePosts{},
		comments:      &fakeComments{},
		notifications: &fakeNotifications{},
	}
	media := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "media:"+r.URL.Path)
	})
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := NewServer(cfg, logger, Services{
		Users:         env.users,
		Posts:         env.posts,
		Comments:      env.comments,
		Notifications: env.notifications,
		Media:         media,
	})
	env.srv = srv
	env.handler = srv.Handler()
	return env
}

var alice = models.Identity{UserID: 7, Name: "Alice", Email: "alice@x.com", AvatarURL: "/uploads/avatars/a.png"}

func tokenFor(t *testing.T, id models.Identity, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken(id, []byte(testSecret), ttl)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
