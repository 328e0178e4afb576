package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	commentsrepo "github.com/dmitrijs2005/gophsocial/internal/server/repositories/comments"
	likesrepo "github.com/dmitrijs2005/gophsocial/internal/server/repositories/likes"
	notificationsrepo "github.com/dmitrijs2005/gophsocial/internal/server/repositories/notifications"
	postsrepo "github.com/dmitrijs2005/gophsocial/internal/server/repositories/posts"
	usersrepo "github.com/dmitrijs2005/gophsocial/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func idOf(u *models.User) models.Identity {
	return identityOf(u)
}

// store is an in-memory database shared by the fake repositories.
type store struct {
	mu            sync.Mutex
	nextID        int64
	users         map[int64]*models.User
	posts         map[int64]*models.Post
	likes         map[[2]int64]bool
	comments      []models.Comment
	notifications []models.Notification
	clock         time.Time

	// injected failures
	insertLikeErr   error
	createPostErr   error
	notificationErr error
}

func newStore() *store {
	return &store{
		users: map[int64]*models.User{},
		posts: map[int64]*models.Post{},
		likes: map[[2]int64]bool{},
		clock: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *store) addUser(name, email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: s.id(), Name: name, Email: email, CreatedAt: s.tick()}
	s.users[u.ID] = u
	return u
}

func (s *store) addPost(userID int64, content string) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Post{ID: s.id(), UserID: userID, Content: &content, CreatedAt: s.tick()}
	s.posts[p.ID] = p
	return p
}

type fakeUsers struct{ s *store }

func (f fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorDuplicateEmail
		}
	}
	cp := *u
	cp.ID = f.s.id()
	cp.CreatedAt = f.s.tick()
	f.s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Name = upd.Name
	if upd.Course != nil {
		u.Course = upd.Course
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) UpdateAvatar(_ context.Context, id int64, avatarURL string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.AvatarURL = &avatarURL
	cp := *u
	return &cp, nil
}

func (f fakeUsers) Search(_ context.Context, query string, limit int) ([]models.UserSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	q := strings.ToLower(query)
	out := []models.UserSummary{}
	for _, u := range f.s.users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePosts struct{ s *store }

func (f fakePosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.createPostErr != nil {
		return nil, f.s.createPostErr
	}
	if _, ok := f.s.users[p.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	cp.ID = f.s.id()
	cp.CreatedAt = f.s.tick()
	f.s.posts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f fakePosts) GetByID(_ context.Context, id int64) (*models.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakePosts) ListFeed(_ context.Context, viewerID int64) ([]models.PostView, error) {
	return f.list(viewerID, 0), nil
}

func (f fakePosts) ListByUser(_ context.Context, viewerID, userID int64) ([]models.PostView, error) {
	return f.list(viewerID, userID), nil
}

func (f fakePosts) list(viewerID, userID int64) []models.PostView {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []models.PostView{}
	for _, p := range f.s.posts {
		if userID != 0 && p.UserID != userID {
			continue
		}
		v := models.PostView{Post: *p, AuthorName: f.s.users[p.UserID].Name}
		for k := range f.s.likes {
			if k[1] == p.ID {
				v.TotalLikes++
				if k[0] == viewerID {
					v.LikedByMe = true
				}
			}
		}
		for _, c := range f.s.comments {
			if c.PostID == p.ID {
				v.TotalComments++
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (f fakePosts) DeleteOwned(_ context.Context, id, ownerID int64) (*models.Post, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.posts[id]
	if !ok || p.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	delete(f.s.posts, id)
	for k := range f.s.likes {
		if k[1] == id {
			delete(f.s.likes, k)
		}
	}
	return p, nil
}

type fakeLikes struct{ s *store }

func (f fakeLikes) Delete(_ context.Context, userID, postID int64) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	k := [2]int64{userID, postID}
	if !f.s.likes[k] {
		return false, nil
	}
	delete(f.s.likes, k)
	return true, nil
}

func (f fakeLikes) Insert(_ context.Context, userID, postID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.insertLikeErr != nil {
		return f.s.insertLikeErr
	}
	if _, ok := f.s.posts[postID]; !ok {
		return common.ErrorNotFound
	}
	k := [2]int64{userID, postID}
	if f.s.likes[k] {
		return fmt.Errorf("%w: like already exists", common.ErrorConflict)
	}
	f.s.likes[k] = true
	return nil
}

func (f fakeLikes) Count(_ context.Context, postID int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for k := range f.s.likes {
		if k[1] == postID {
			n++
		}
	}
	return n, nil
}

type fakeComments struct{ s *store }

func (f fakeComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *c
	cp.ID = f.s.id()
	cp.CreatedAt = f.s.tick()
	f.s.comments = append(f.s.comments, cp)
	return &cp, nil
}

func (f fakeComments) ListByPost(_ context.Context, postID int64) ([]models.CommentView, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []models.CommentView{}
	for _, c := range f.s.comments {
		if c.PostID == postID {
			out = append(out, models.CommentView{Comment: c, AuthorName: f.s.users[c.UserID].Name})
		}
	}
	return out, nil
}

type fakeNotifications struct{ s *store }

func (f fakeNotifications) Create(_ context.Context, n *models.Notification) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.notificationErr != nil {
		return f.s.notificationErr
	}
	n.ID = f.s.id()
	n.CreatedAt = f.s.tick()
	f.s.notifications = append(f.s.notifications, *n)
	return nil
}

func (f fakeNotifications) ListForRecipient(_ context.Context, recipientID int64) ([]models.NotificationView, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []models.NotificationView{}
	for i := len(f.s.notifications) - 1; i >= 0; i-- {
		n := f.s.notifications[i]
		if n.RecipientID == recipientID {
			out = append(out, models.NotificationView{Notification: n, SenderName: f.s.users[n.SenderID].Name})
		}
	}
	return out, nil
}

func (f fakeNotifications) MarkAllRead(_ context.Context, recipientID int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for i := range f.s.notifications {
		if f.s.notifications[i].RecipientID == recipientID && !f.s.notifications[i].IsRead {
			f.s.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct{ s *store }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return fakeUsers{m.s} }
func (m *fakeRepoManager) Posts(dbx.DBTX) postsrepo.Repository         { return fakePosts{m.s} }
func (m *fakeRepoManager) Likes(dbx.DBTX) likesrepo.Repository         { return fakeLikes{m.s} }
func (m *fakeRepoManager) Comments(dbx.DBTX) commentsrepo.Repository   { return fakeComments{m.s} }
func (m *fakeRepoManager) Notifications(dbx.DBTX) notificationsrepo.Repository {
	return fakeNotifications{m.s}
}

// fakeMedia records stored and removed URLs.
type fakeMedia struct {
	mu       sync.Mutex
	n        int
	stored   []string
	removed  []string
	storeErr error
}

func (m *fakeMedia) StoreUpload(_ context.Context, kind, name string, r io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return "", m.storeErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.n++
	url := fmt.Sprintf("/uploads/%s/%d-%s", kind, m.n, name)
	m.stored = append(m.stored, url)
	return url, nil
}

func (m *fakeMedia) Remove(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, url)
	return nil
}

var errBoom = errors.New("boom")
