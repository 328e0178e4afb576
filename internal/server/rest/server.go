// Package rest exposes the social API over HTTP/JSON using gorilla/mux.
package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/dmitrijs2005/gophsocial/internal/server/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gorilla/mux"
)

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.UserSummary, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id models.Identity, targetID int64, upd models.ProfileUpdate) (*models.User, error)
	UpdateAvatar(ctx context.Context, id models.Identity, file *services.FileUpload) (*models.User, error)
	Search(ctx context.Context, id models.Identity, query string) ([]models.UserSummary, error)
}

type PostService interface {
	CreatePost(ctx context.Context, id models.Identity, content string, image *services.FileUpload) (*models.Post, error)
	ListFeed(ctx context.Context, viewerID int64) ([]models.PostView, error)
	ListUserPosts(ctx context.Context, viewerID, userID int64) ([]models.PostView, error)
	DeletePost(ctx context.Context, id models.Identity, postID int64) error
	ToggleLike(ctx context.Context, id models.Identity, postID int64) (*models.LikeResult, error)
}

type CommentService interface {
	List(ctx context.Context, id models.Identity, postID int64) ([]models.CommentView, error)
	Create(ctx context.Context, id models.Identity, postID int64, content string) (*models.CommentView, error)
}

type NotificationService interface {
	List(ctx context.Context, id models.Identity) ([]models.NotificationView, error)
	MarkRead(ctx context.Context, id models.Identity) (int64, error)
}

// Services bundles the business layer the HTTP handlers delegate to.
type Services struct {
	Users         UserService
	Posts         PostService
	Comments      CommentService
	Notifications NotificationService
	// Media serves stored uploads with the URL prefix already stripped.
	Media http.Handler
}

type Server struct {
	svc         Services
	logger      logging.Logger
	jwtSecret   []byte
	mediaPrefix string
	maxUpload   int64
	timeout     time.Duration
	origins     map[string]bool
	allowAll    bool
}

func NewServer(cfg *config.Config, logger logging.Logger, svc Services) *Server {
	s := &Server{
		svc:         svc,
		logger:      logger,
		jwtSecret:   []byte(cfg.SecretKey),
		mediaPrefix: strings.TrimRight(cfg.MediaURLPrefix, "/"),
		maxUpload:   cfg.MaxUploadSize,
		timeout:     cfg.RequestTimeout,
		origins:     map[string]bool{},
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			s.allowAll = true
		}
		s.origins[o] = true
	}
	return s
}

// Handler builds the router and wraps it in the outer middleware chain.
// CORS sits outside the router so preflight requests never reach method
// matching.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(s.withTimeout)
	r.Use(s.authenticate)

	r.HandleFunc("/", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)

	r.HandleFunc("/profile/upload-avatar", s.requireAuth(s.uploadAvatar)).Methods(http.MethodPost)
	r.HandleFunc("/profile/{id:[0-9]+}", s.getProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile/{id:[0-9]+}", s.requireAuth(s.updateProfile)).Methods(http.MethodPut)
	r.HandleFunc("/search/users", s.requireAuth(s.searchUsers)).Methods(http.MethodGet)

	r.HandleFunc("/posts", s.listFeed).Methods(http.MethodGet)
	r.HandleFunc("/posts", s.requireAuth(s.createPost)).Methods(http.MethodPost)
	r.HandleFunc("/posts/user/{id}", s.listUserPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}", s.requireAuth(s.deletePost)).Methods(http.MethodDelete)
	r.HandleFunc("/posts/{id:[0-9]+}/toggle-like", s.requireAuth(s.toggleLike)).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id:[0-9]+}/comments", s.requireAuth(s.listComments)).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id:[0-9]+}/comments", s.requireAuth(s.createComment)).Methods(http.MethodPost)

	r.HandleFunc("/notifications", s.requireAuth(s.listNotifications)).Methods(http.MethodGet)
	r.HandleFunc("/notifications/read", s.requireAuth(s.markNotificationsRead)).Methods(http.MethodPost)

	if s.svc.Media != nil {
		prefix := s.mediaPrefix + "/"
		r.PathPrefix(prefix).
			Handler(http.StripPrefix(prefix, s.svc.Media)).
			Methods(http.MethodGet, http.MethodHead)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	var h http.Handler = r
	h = s.cors(h)
	h = s.recoverer(h)
	h = s.logRequests(h)
	h = requestID(h)
	return h
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
