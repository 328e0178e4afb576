package users

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error)
	UpdateAvatar(ctx context.Context, id int64, avatarURL string) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error)
}
