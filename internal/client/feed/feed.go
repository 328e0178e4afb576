// Package feed holds the client's copy of a post list and applies like
// toggles optimistically: the local state flips first and is reconciled
// with the server's answer afterwards.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

var ErrPostNotInFeed = errors.New("post not in feed")

// Fetcher loads a fresh list of posts.
type Fetcher func(ctx context.Context) ([]models.PostView, error)

// Pending is a speculative like flip awaiting the server's answer.
type Pending struct {
	PostID int64
	liked  bool
	done   bool
}

// Liked is the state shown to the user while the request is in flight.
func (p *Pending) Liked() bool { return p.liked }

// Feed is safe for concurrent use.
type Feed struct {
	mu    sync.Mutex
	posts []models.PostView
}

func New() *Feed {
	return &Feed{}
}

// Refresh replaces the list with what fetch returns. On error the current
// list is kept.
func (f *Feed) Refresh(ctx context.Context, fetch Fetcher) error {
	posts, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("refresh feed: %w", err)
	}
	f.mu.Lock()
	f.posts = posts
	f.mu.Unlock()
	return nil
}

// Posts returns a copy of the current list.
func (f *Feed) Posts() []models.PostView {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PostView, len(f.posts))
	copy(out, f.posts)
	return out
}

// At returns the n-th post, counting from 1 as listed to the user.
func (f *Feed) At(n int) (models.PostView, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n < 1 || n > len(f.posts) {
		return models.PostView{}, false
	}
	return f.posts[n-1], true
}

// Remove drops a post, e.g. after it was deleted on the server.
func (f *Feed) Remove(postID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return
		}
	}
}

// Apply flips LikedByMe on postID and adjusts TotalLikes to match.
func (f *Feed) Apply(postID int64) (*Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.find(postID)
	if p == nil {
		return nil, ErrPostNotInFeed
	}
	flip(p, !p.LikedByMe)
	return &Pending{PostID: postID, liked: p.LikedByMe}, nil
}

// Confirm settles pc with the server's result. A disagreeing server wins.
func (f *Feed) Confirm(pc *Pending, serverLiked bool) {
	f.settle(pc, serverLiked)
}

// SetTotal overwrites a post's like count with the server's figure.
func (f *Feed) SetTotal(postID, total int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.find(postID); p != nil && total >= 0 {
		p.TotalLikes = total
	}
}

// Rollback undoes pc after a failed request.
func (f *Feed) Rollback(pc *Pending) {
	f.settle(pc, !pc.liked)
}

func (f *Feed) settle(pc *Pending, liked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pc.done {
		return
	}
	pc.done = true
	// a refresh may have replaced or dropped the post meanwhile
	if p := f.find(pc.PostID); p != nil && p.LikedByMe != liked {
		flip(p, liked)
	}
}

// Toggle runs the whole optimistic cycle around send.
func (f *Feed) Toggle(ctx context.Context, postID int64, send func(ctx context.Context, postID int64) (*models.LikeResult, error)) (bool, error) {
	pc, err := f.Apply(postID)
	if err != nil {
		return false, err
	}
	res, err := send(ctx, postID)
	if err != nil {
		f.Rollback(pc)
		return !pc.liked, err
	}
	f.Confirm(pc, res.Liked)
	f.SetTotal(postID, res.TotalLikes)
	return res.Liked, nil
}

func (f *Feed) find(postID int64) *models.PostView {
	for i := range f.posts {
		if f.posts[i].ID == postID {
			return &f.posts[i]
		}
	}
	return nil
}

func flip(p *models.PostView, liked bool) {
	if p.LikedByMe == liked {
		return
	}
	p.LikedByMe = liked
	if liked {
		p.TotalLikes++
	} else if p.TotalLikes > 0 {
		p.TotalLikes--
	}
}
