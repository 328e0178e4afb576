// Package comments provides the PostgreSQL-backed comment repository.
package comments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts c and fills in ID and CreatedAt. A missing post yields
// common.ErrorNotFound.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (user_id, post_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, c.UserID, c.PostID, c.Content).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// ListByPost returns the comments of postID oldest first.
func (r *PostgresRepository) ListByPost(ctx context.Context, postID int64) ([]models.CommentView, error) {
	query :=
		`SELECT c.id, c.user_id, c.post_id, c.content, c.created_at, u.name, u.avatar_url
		 FROM comments c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.post_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.CommentView, 0)
	for rows.Next() {
		var v models.CommentView
		if err := rows.Scan(&v.ID, &v.UserID, &v.PostID, &v.Content, &v.CreatedAt, &v.AuthorName, &v.AuthorAvatar); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
