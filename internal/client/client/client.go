package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

// File is an upload read from the local filesystem.
type File struct {
	Name string
	Body io.Reader
}

type Client interface {
	Health(ctx context.Context) error

	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error)
	UploadAvatar(ctx context.Context, f File) (*models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error)

	CreatePost(ctx context.Context, content string, image *File) (*models.Post, error)
	Feed(ctx context.Context) ([]models.PostView, error)
	UserPosts(ctx context.Context, userID int64) ([]models.PostView, error)
	DeletePost(ctx context.Context, postID int64) error
	ToggleLike(ctx context.Context, postID int64) (*models.LikeResult, error)

	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	AddComment(ctx context.Context, postID int64, content string) (*models.Comment, error)

	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context) (int64, error)
}
