package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

type NotificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotificationService(db *sql.DB, m repomanager.RepositoryManager) *NotificationService {
	return &NotificationService{db: db, repomanager: m}
}

// List returns the caller's notifications newest first.
func (s *NotificationService) List(ctx context.Context, id models.Identity) ([]models.NotificationView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.repomanager.Notifications(s.db).ListForRecipient(ctx, id.UserID)
}

// MarkRead marks all of the caller's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, id models.Identity) (int64, error) {
	if err := requireIdentity(id); err != nil {
		return 0, err
	}
	return s.repomanager.Notifications(s.db).MarkAllRead(ctx, id.UserID)
}
