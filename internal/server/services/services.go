// Package services contains server-side business logic: identity (register,
// login, profiles), posts and likes, comments and notifications.
package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

// MediaStore stores uploads and returns the relative URL to persist.
type MediaStore interface {
	StoreUpload(ctx context.Context, kind, originalName string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// FileUpload is an uploaded file as received from the client.
type FileUpload struct {
	Filename string
	Body     io.Reader
}

func requireIdentity(id models.Identity) error {
	if id.UserID <= 0 {
		return common.ErrorUnauthorized
	}
	return nil
}

func validation(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
