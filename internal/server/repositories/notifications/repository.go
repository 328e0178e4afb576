package notifications

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID int64) ([]models.NotificationView, error)
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
}
