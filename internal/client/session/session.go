// Package session keeps the signed-in user's token on local storage and
// exposes the authentication state derived from it.
//
// A Store starts in StateLoading. Load moves it to StateAuthenticated when a
// persisted, unexpired token is found and to StateUnauthenticated otherwise.
// Login persists a token before switching to StateAuthenticated; Logout
// switches to StateUnauthenticated without waiting for the server.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Claims are the display fields carried in the token. They are decoded
// without verifying the signature; the server remains the authority.
type Claims struct {
	UserID    int64
	Name      string
	Email     string
	AvatarURL string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

var ErrMalformedToken = errors.New("malformed token")

// DecodeClaims reads the claims of token without checking its signature.
func DecodeClaims(token string) (Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if tc.UserID <= 0 {
		return Claims{}, fmt.Errorf("%w: missing user_id", ErrMalformedToken)
	}
	c := Claims{
		UserID:    tc.UserID,
		Name:      tc.Name,
		Email:     tc.Email,
		AvatarURL: tc.AvatarURL,
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}

// Store is safe for concurrent use.
type Store struct {
	repo metadata.Repository
	now  func() time.Time

	mu     sync.RWMutex
	state  State
	token  string
	claims Claims
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo, now: time.Now, state: StateLoading}
}

// Load reads the persisted token. Tokens that are malformed or already
// expired are deleted.
func (s *Store) Load(ctx context.Context) error {
	token, err := s.repo.Get(ctx, metadata.KeyAccessToken)
	if errors.Is(err, common.ErrorNotFound) {
		s.set(StateUnauthenticated, "", Claims{})
		return nil
	}
	if err != nil {
		s.set(StateUnauthenticated, "", Claims{})
		return fmt.Errorf("load session: %w", err)
	}

	claims, err := DecodeClaims(token)
	if err != nil || s.expired(claims) {
		s.set(StateUnauthenticated, "", Claims{})
		if derr := s.repo.Delete(ctx, metadata.KeyAccessToken); derr != nil {
			return fmt.Errorf("discard stale session: %w", derr)
		}
		return nil
	}

	s.set(StateAuthenticated, token, claims)
	return nil
}

// Login persists token and switches to StateAuthenticated. The state is
// unchanged when the token cannot be decoded or stored.
func (s *Store) Login(ctx context.Context, token string) error {
	claims, err := DecodeClaims(token)
	if err != nil {
		return err
	}
	if err := s.repo.Set(ctx, metadata.KeyAccessToken, token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.set(StateAuthenticated, token, claims)
	return nil
}

// Logout always ends in StateUnauthenticated; the returned error only
// reports a failure to clear local storage.
func (s *Store) Logout(ctx context.Context) error {
	s.set(StateUnauthenticated, "", Claims{})
	if err := s.repo.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the bearer token, or "" unless authenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated {
		return ""
	}
	return s.token
}

func (s *Store) Claims() (Claims, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims, s.state == StateAuthenticated
}

// UpdateDisplay overwrites the locally shown name and avatar after a profile
// change. The token keeps its login-time snapshot until the next login.
func (s *Store) UpdateDisplay(name, avatarURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return
	}
	s.claims.Name = name
	s.claims.AvatarURL = avatarURL
}

func (s *Store) expired(c Claims) bool {
	return !c.ExpiresAt.IsZero() && !s.now().Before(c.ExpiresAt)
}

func (s *Store) set(state State, token string, claims Claims) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.token = token
	s.claims = claims
}
