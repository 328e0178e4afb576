// Package media stores uploaded images (avatars, post images) and serves
// them back under the media URL prefix.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/server/config"
)

// Storage persists objects under slash-separated relative keys.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Handler serves GET requests whose path is the key (prefix stripped).
	Handler() http.Handler
}

// NewStorage builds the backend selected by cfg.MediaBackend.
func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendLocal:
		return NewLocalStorage(cfg.UploadDir)
	case config.MediaBackendS3:
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.MediaBackend)
	}
}
