package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/dmitrijs2005/gophsocial/internal/server/media"
	"github.com/dmitrijs2005/gophsocial/internal/server/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

// Search limits.
const (
	SearchMinQueryLen = 2
	SearchMaxResults  = 20
)

// LoginResult is a signed token plus the profile snapshot it was issued for.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// UserService handles registration, login and profiles.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	media                       MediaStore
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	dummyHash                   string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, store MediaStore, logger logging.Logger, cfg *config.Config) *UserService {
	// a uuid is well under bcrypt's length limit and the cost is normalized,
	// so this cannot fail
	dummy, _ := auth.NewDummyHash(cfg.BcryptCost)
	return &UserService{
		db:                          db,
		repomanager:                 m,
		media:                       store,
		logger:                      logger,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
		dummyHash:                   dummy,
	}
}

// Register creates an account. The email is the login key and is stored
// trimmed and lower-cased.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.UserSummary, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, validation("name, email and password are required")
	}
	if len(password) > auth.MaxPasswordLen {
		return nil, validation(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordLen))
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	metrics.RecordEvent(metrics.EventUserRegistered)
	summary := u.Summary()
	return &summary, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both yield common.ErrorInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validation("email and password are required")
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error finding user: %w", err)
		}
		// same bcrypt cost as a stored hash
		_, _ = auth.CheckPassword(s.dummyHash, password)
		metrics.RecordEvent(metrics.EventLoginFailed)
		return nil, common.ErrorInvalidCredentials
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		metrics.RecordEvent(metrics.EventLoginFailed)
		return nil, common.ErrorInvalidCredentials
	}

	token, err := auth.GenerateToken(identityOf(user), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	metrics.RecordEvent(metrics.EventLoginSucceeded)
	return &LoginResult{Token: token, User: user}, nil
}

// GetProfile always reads the current row, unlike the token claims.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, validation("invalid user id")
	}
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, id models.Identity, targetID int64, upd models.ProfileUpdate) (*models.User, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if !auth.Authorize(id, targetID) {
		return nil, fmt.Errorf("%w: cannot edit another user's profile", common.ErrorForbidden)
	}
	upd.Name = strings.TrimSpace(upd.Name)
	if upd.Name == "" {
		return nil, validation("name is required")
	}
	return s.repomanager.Users(s.db).UpdateProfile(ctx, id.UserID, upd)
}

// UpdateAvatar stores the upload, points the caller's avatar at it and
// removes the previous image.
func (s *UserService) UpdateAvatar(ctx context.Context, id models.Identity, file *FileUpload) (*models.User, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if file == nil || file.Body == nil {
		return nil, validation("no file uploaded")
	}

	repo := s.repomanager.Users(s.db)
	current, err := repo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	url, err := s.media.StoreUpload(ctx, media.KindAvatar, file.Filename, file.Body)
	if err != nil {
		return nil, err
	}
	metrics.RecordEvent(metrics.EventUploadStored)

	updated, err := repo.UpdateAvatar(ctx, id.UserID, url)
	if err != nil {
		s.removeMedia(ctx, url)
		return nil, err
	}

	if current.AvatarURL != nil && *current.AvatarURL != url {
		s.removeMedia(ctx, *current.AvatarURL)
	}
	return updated, nil
}

// Search matches name or email. Queries shorter than SearchMinQueryLen
// return an empty list.
func (s *UserService) Search(ctx context.Context, id models.Identity, query string) ([]models.UserSummary, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < SearchMinQueryLen {
		return []models.UserSummary{}, nil
	}
	return s.repomanager.Users(s.db).Search(ctx, query, SearchMaxResults)
}

func (s *UserService) removeMedia(ctx context.Context, url string) {
	if err := s.media.Remove(ctx, url); err != nil {
		s.logger.Warn(ctx, "failed to remove media", "url", url, "error", err)
	}
}

func identityOf(u *models.User) models.Identity {
	id := models.Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
	if u.AvatarURL != nil {
		id.AvatarURL = *u.AvatarURL
	}
	return id
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
