// Package notifications provides the PostgreSQL-backed notification
// repository.
package notifications

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/dbx"
	"github.com/dmitrijs2005/gophsocial/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) error {
	query :=
		`INSERT INTO notifications (recipient_id, sender_id, post_id, type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_read, created_at`

	err := r.db.QueryRowContext(ctx, query, n.RecipientID, n.SenderID, n.PostID, n.Type).
		Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListForRecipient returns the notifications addressed to recipientID,
// newest first.
func (r *PostgresRepository) ListForRecipient(ctx context.Context, recipientID int64) ([]models.NotificationView, error) {
	query :=
		`SELECT n.id, n.recipient_id, n.sender_id, n.post_id, n.type, n.is_read, n.created_at,
		        u.name, u.avatar_url, p.content
		 FROM notifications n
		 JOIN users u ON u.id = n.sender_id
		 JOIN posts p ON p.id = n.post_id
		 WHERE n.recipient_id = $1
		 ORDER BY n.created_at DESC, n.id DESC`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.NotificationView, 0)
	for rows.Next() {
		var v models.NotificationView
		if err := rows.Scan(
			&v.ID, &v.RecipientID, &v.SenderID, &v.PostID, &v.Type, &v.IsRead, &v.CreatedAt,
			&v.SenderName, &v.SenderAvatar, &v.PostContent,
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

// MarkAllRead flags every unread notification of recipientID as read and
// returns how many changed.
func (r *PostgresRepository) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
