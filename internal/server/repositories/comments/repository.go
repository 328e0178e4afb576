package comments

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]models.CommentView, error)
}
