package posts

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

// Repository stores posts and composes feed views. A viewerID of 0 means an
// anonymous viewer, for whom LikedByMe is always false.
type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListFeed(ctx context.Context, viewerID int64) ([]models.PostView, error)
	ListByUser(ctx context.Context, viewerID, userID int64) ([]models.PostView, error)
	DeleteOwned(ctx context.Context, id, ownerID int64) (*models.Post, error)
}
