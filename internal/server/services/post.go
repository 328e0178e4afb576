package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/media"
	"github.com/dmitrijs2005/gophsocial/internal/server/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
)

// ErrPostNotFoundOrNotOwned is returned by DeletePost for both missing and
// foreign posts.
var ErrPostNotFoundOrNotOwned = fmt.Errorf("%w: post not found or not owned", common.ErrorForbidden)

// PostService handles posts, the feed and like toggling.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       MediaStore
	logger      logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, store MediaStore, logger logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, media: store, logger: logger}
}

// CreatePost stores the optional image first, then the post row. At least one
// of content and image is required.
func (s *PostService) CreatePost(ctx context.Context, id models.Identity, content string, image *FileUpload) (*models.Post, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if image != nil && image.Body == nil {
		image = nil
	}
	if blank(content) && image == nil {
		return nil, validation("post must have content or an image")
	}
	if blank(content) {
		content = ""
	}

	post := &models.Post{UserID: id.UserID, Content: optionalString(content)}

	if image != nil {
		url, err := s.media.StoreUpload(ctx, media.KindPost, image.Filename, image.Body)
		if err != nil {
			return nil, err
		}
		metrics.RecordEvent(metrics.EventUploadStored)
		post.ImageURL = &url
	}

	created, err := s.repomanager.Posts(s.db).Create(ctx, post)
	if err != nil {
		if post.ImageURL != nil {
			s.removeMedia(ctx, *post.ImageURL)
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	metrics.RecordEvent(metrics.EventPostCreated)
	return created, nil
}

// ListFeed returns all posts newest first. viewerID 0 is anonymous.
func (s *PostService) ListFeed(ctx context.Context, viewerID int64) ([]models.PostView, error) {
	return s.repomanager.Posts(s.db).ListFeed(ctx, viewerID)
}

// ListUserPosts returns userID's posts newest first.
func (s *PostService) ListUserPosts(ctx context.Context, viewerID, userID int64) ([]models.PostView, error) {
	if userID <= 0 {
		return nil, validation("invalid user id")
	}
	return s.repomanager.Posts(s.db).ListByUser(ctx, viewerID, userID)
}

// DeletePost deletes the caller's post. Likes, comments and notifications go
// with it via cascade; the image is removed afterwards, best-effort.
func (s *PostService) DeletePost(ctx context.Context, id models.Identity, postID int64) error {
	if err := requireIdentity(id); err != nil {
		return err
	}

	post, err := s.repomanager.Posts(s.db).DeleteOwned(ctx, postID, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrPostNotFoundOrNotOwned
		}
		return fmt.Errorf("error deleting post: %w", err)
	}

	metrics.RecordEvent(metrics.EventPostDeleted)
	if post.ImageURL != nil {
		s.removeMedia(ctx, *post.ImageURL)
	}
	return nil
}

// ToggleLike flips the caller's like on postID inside one transaction:
// an existing like is deleted, otherwise one is inserted and the post owner
// is notified. A concurrent duplicate insert yields common.ErrorConflict.
func (s *PostService) ToggleLike(ctx context.Context, id models.Identity, postID int64) (*models.LikeResult, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	result := &models.LikeResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		likes := s.repomanager.Likes(tx)

		removed, err := likes.Delete(ctx, id.UserID, postID)
		if err != nil {
			return err
		}
		if !removed {
			post, err := s.repomanager.Posts(tx).GetByID(ctx, postID)
			if err != nil {
				return err
			}
			if err := likes.Insert(ctx, id.UserID, postID); err != nil {
				return err
			}
			if err := notifyOwner(ctx, s.repomanager, tx, post, id, models.NotificationLike); err != nil {
				return err
			}
		}
		result.Liked = !removed

		result.TotalLikes, err = likes.Count(ctx, postID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			metrics.RecordEvent(metrics.EventLikeConflict)
			return nil, err
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: post not found", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("error toggling like: %w", err)
	}

	if result.Liked {
		metrics.RecordEvent(metrics.EventLikeAdded)
	} else {
		metrics.RecordEvent(metrics.EventLikeRemoved)
	}
	return result, nil
}

func (s *PostService) removeMedia(ctx context.Context, url string) {
	if err := s.media.Remove(ctx, url); err != nil {
		s.logger.Warn(ctx, "failed to remove media", "url", url, "error", err)
	}
}

// notifyOwner records a notification for the post owner unless the actor is
// the owner.
func notifyOwner(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, post *models.Post, actor models.Identity, kind string) error {
	if post.UserID == actor.UserID {
		return nil
	}
	err := m.Notifications(tx).Create(ctx, &models.Notification{
		RecipientID: post.UserID,
		SenderID:    actor.UserID,
		PostID:      post.ID,
		Type:        kind,
	})
	if err != nil {
		return err
	}
	metrics.RecordEvent(metrics.EventNotification)
	return nil
}
