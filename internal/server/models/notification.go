package models

import "time"

// Notification types.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

type Notification struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	SenderID    int64     `json:"sender_id"`
	PostID      int64     `json:"post_id"`
	Type        string    `json:"type"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationView adds the sender's display fields and a preview of the
// related post.
type NotificationView struct {
	Notification
	SenderName   string  `json:"sender_name"`
	SenderAvatar *string `json:"sender_avatar"`
	PostContent  *string `json:"post_content"`
}
