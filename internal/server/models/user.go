// Package models defines the server-side records and read views exchanged
// between repositories, services and the REST layer.
package models

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Course       *string   `json:"course"`
	Bio          *string   `json:"bio"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the short form returned by registration and search.
type UserSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Summary drops the profile fields.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}

// ProfileUpdate carries the editable profile fields. Nil keeps the stored
// value.
type ProfileUpdate struct {
	Name   string
	Course *string
	Bio    *string
}

// Identity is the authenticated caller, decoded from the bearer token.
type Identity struct {
	UserID    int64
	Name      string
	Email     string
	AvatarURL string
}
