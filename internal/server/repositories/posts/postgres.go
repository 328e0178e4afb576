// Package posts provides the PostgreSQL-backed post repository, including
// the feed query with read-time like and comment counters.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

// viewQuery selects PostView rows. $1 is the viewer id or NULL.
const viewQuery = `
	SELECT p.id, p.user_id, p.content, p.image_url, p.created_at,
	       u.name, u.avatar_url,
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS total_likes,
	       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS total_comments,
	       EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1) AS liked_by_me
	FROM posts p
	JOIN users u ON u.id = p.user_id`

const orderByNewest = `
	ORDER BY p.created_at DESC, p.id DESC`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts post and fills in ID and CreatedAt. An unknown owner yields
// common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (user_id, content, image_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, post.UserID, post.Content, post.ImageURL).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT id, user_id, content, image_url, created_at FROM posts WHERE id = $1`

	p := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Content, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// ListFeed returns every post, newest first.
func (r *PostgresRepository) ListFeed(ctx context.Context, viewerID int64) ([]models.PostView, error) {
	return r.listViews(ctx, viewQuery+orderByNewest, viewerArg(viewerID))
}

// ListByUser returns the posts of userID, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, viewerID, userID int64) ([]models.PostView, error) {
	return r.listViews(ctx, viewQuery+`
	WHERE p.user_id = $2`+orderByNewest, viewerArg(viewerID), userID)
}

// DeleteOwned removes the post only when ownerID owns it and returns the
// deleted row. Missing and foreign posts both yield common.ErrorNotFound.
func (r *PostgresRepository) DeleteOwned(ctx context.Context, id, ownerID int64) (*models.Post, error) {
	query :=
		`DELETE FROM posts
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, content, image_url, created_at`

	p := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&p.ID, &p.UserID, &p.Content, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) listViews(ctx context.Context, query string, args ...any) ([]models.PostView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.PostView, 0)
	for rows.Next() {
		var v models.PostView
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Content, &v.ImageURL, &v.CreatedAt,
			&v.AuthorName, &v.AuthorAvatar,
			&v.TotalLikes, &v.TotalComments, &v.LikedByMe,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func viewerArg(viewerID int64) any {
	if viewerID <= 0 {
		return nil
	}
	return viewerID
}
