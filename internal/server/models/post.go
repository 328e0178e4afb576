package models

import "time"

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   *string   `json:"content"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView is a post joined with its author and read-time counters.
type PostView struct {
	Post
	AuthorName    string  `json:"author_name"`
	AuthorAvatar  *string `json:"author_avatar"`
	TotalLikes    int64   `json:"total_likes"`
	TotalComments int64   `json:"total_comments"`
	LikedByMe     bool    `json:"liked_by_me"`
}

type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentView struct {
	Comment
	AuthorName   string  `json:"author_name"`
	AuthorAvatar *string `json:"author_avatar"`
}

// LikeResult is the outcome of a like toggle with the post's like count
// after it.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"total_likes"`
}
