package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/server/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager) *CommentService {
	return &CommentService{db: db, repomanager: m}
}

// List returns the comments of postID oldest first.
func (s *CommentService) List(ctx context.Context, id models.Identity, postID int64) ([]models.CommentView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Posts(s.db).GetByID(ctx, postID); err != nil {
		return nil, notFoundAs(err, "post not found")
	}
	return s.repomanager.Comments(s.db).ListByPost(ctx, postID)
}

// Create adds a comment and notifies the post owner. The returned view
// carries the caller's name and avatar from the token, not a fresh lookup.
func (s *CommentService) Create(ctx context.Context, id models.Identity, postID int64, content string) (*models.CommentView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validation("comment content is required")
	}

	var created *models.Comment
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		post, err := s.repomanager.Posts(tx).GetByID(ctx, postID)
		if err != nil {
			return err
		}
		created, err = s.repomanager.Comments(tx).Create(ctx, &models.Comment{
			UserID:  id.UserID,
			PostID:  postID,
			Content: content,
		})
		if err != nil {
			return err
		}
		return notifyOwner(ctx, s.repomanager, tx, post, id, models.NotificationComment)
	})
	if err != nil {
		return nil, notFoundAs(err, "post not found")
	}

	metrics.RecordEvent(metrics.EventCommentCreated)
	return &models.CommentView{
		Comment:      *created,
		AuthorName:   id.Name,
		AuthorAvatar: optionalString(id.AvatarURL),
	}, nil
}

func notFoundAs(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %s", common.ErrorNotFound, msg)
	}
	return err
}
