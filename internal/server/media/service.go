package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Service turns uploads into stored objects and public URLs of the form
// "<prefix>/<key>".
type Service struct {
	storage   Storage
	urlPrefix string
	now       func() time.Time
}

func NewService(storage Storage, urlPrefix string) *Service {
	return &Service{
		storage:   storage,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		now:       time.Now,
	}
}

// StoreUpload saves r under a freshly generated key for kind and returns the
// relative URL to persist. Only the extension of originalName is used.
func (s *Service) StoreUpload(ctx context.Context, kind, originalName string, r io.Reader) (string, error) {
	if kind != KindAvatar && kind != KindPost {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	ext, err := extensionOf(originalName)
	if err != nil {
		return "", err
	}

	key := newKey(kind, ext, s.now())
	if err := s.storage.Save(ctx, key, r); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return s.urlPrefix + "/" + key, nil
}

// Remove deletes the object behind a URL returned by StoreUpload.
func (s *Service) Remove(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok {
		return ErrForeignReference
	}
	return s.storage.Delete(ctx, key)
}

// Handler serves stored objects; mount it under the URL prefix with the
// prefix stripped.
func (s *Service) Handler() http.Handler {
	return s.storage.Handler()
}

// Prefix is the URL prefix media is served under.
func (s *Service) Prefix() string {
	return s.urlPrefix
}
