// Package models holds the client-side views of API resources, decoded from
// the server's JSON.
package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Course    *string   `json:"course"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type UserSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Content   *string   `json:"content"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PostView is a feed entry. TotalLikes and LikedByMe are what the optimistic
// like toggle mutates locally.
type PostView struct {
	Post
	AuthorName    string  `json:"author_name"`
	AuthorAvatar  *string `json:"author_avatar"`
	TotalLikes    int64   `json:"total_likes"`
	TotalComments int64   `json:"total_comments"`
	LikedByMe     bool    `json:"liked_by_me"`
}

// Text returns the post content or "" for image-only posts.
func (p PostView) Text() string {
	if p.Content == nil {
		return ""
	}
	return *p.Content
}

type Comment struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	PostID       int64     `json:"post_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar *string   `json:"author_avatar"`
}

type Notification struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"sender_id"`
	PostID       int64     `json:"post_id"`
	Type         string    `json:"type"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar *string   `json:"sender_avatar"`
	PostContent  *string   `json:"post_content"`
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	TotalLikes int64 `json:"total_likes"`
}

// ProfileUpdate is the body of PUT /profile/{id}.
type ProfileUpdate struct {
	Name   string  `json:"name"`
	Course *string `json:"course,omitempty"`
	Bio    *string `json:"bio,omitempty"`
}
