// Package likes provides the PostgreSQL-backed like repository.
package likes

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, postID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM post_likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, userID, postID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO post_likes (user_id, post_id) VALUES ($1, $2)`, userID, postID)
	switch {
	case err == nil:
		return nil
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: like already exists", common.ErrorConflict)
	case dbx.IsForeignKeyViolation(err):
		return common.ErrorNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Count(ctx context.Context, postID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
