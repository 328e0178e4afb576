package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

// Feed re-fetches the global feed and lists it.
func (a *App) Feed(ctx context.Context, _ []string) error {
	if err := a.feed.Refresh(ctx, a.api.Feed); err != nil {
		return err
	}
	a.printPosts()
	return nil
}

// Mine lists the caller's own posts.
func (a *App) Mine(ctx context.Context, _ []string) error {
	c, _ := a.session.Claims()
	return a.listUser(ctx, c.UserID)
}

// User shows a profile followed by that user's posts.
func (a *App) User(ctx context.Context, args []string) error {
	id, err := intArg(args, "user <id>")
	if err != nil {
		return err
	}
	u, err := a.api.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	a.printUser(u)
	return a.listUser(ctx, id)
}

func (a *App) listUser(ctx context.Context, userID int64) error {
	err := a.feed.Refresh(ctx, func(ctx context.Context) ([]models.PostView, error) {
		return a.api.UserPosts(ctx, userID)
	})
	if err != nil {
		return err
	}
	a.printPosts()
	return nil
}

// Post publishes a text post.
func (a *App) Post(ctx context.Context, _ []string) error {
	content, err := getMultiline(a.reader, "Enter post text", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		return errors.New("post is empty")
	}
	p, err := a.api.CreatePost(ctx, content, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Posted (id %d)\n", p.ID)
	return nil
}

// Image publishes the file at path with an optional caption.
func (a *App) Image(ctx context.Context, args []string) error {
	path, err := oneArg(args, "image <path>")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	caption, err := getSimpleText(a.reader, "Enter caption (optional)", a.out)
	if err != nil {
		return err
	}
	p, err := a.api.CreatePost(ctx, caption, &client.File{Name: filepath.Base(path), Body: f})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Posted (id %d) %s\n", p.ID, a.mediaURL(p.ImageURL))
	return nil
}

// Like toggles the like on the n-th listed post. The listing shows the new
// state before the server answers and is corrected if the request fails.
func (a *App) Like(ctx context.Context, args []string) error {
	p, err := a.listedPost(args, "like <n>")
	if err != nil {
		return err
	}
	liked, err := a.feed.Toggle(ctx, p.ID, a.api.ToggleLike)
	if err != nil {
		return err
	}
	if updated, ok := a.findListed(p.ID); ok {
		p = updated
	}
	verb := "Unliked"
	if liked {
		verb = "Liked"
	}
	fmt.Fprintf(a.out, "%s post %d (%d likes)\n", verb, p.ID, p.TotalLikes)
	return nil
}

// Delete removes one of the caller's posts.
func (a *App) Delete(ctx context.Context, args []string) error {
	p, err := a.listedPost(args, "delete <n>")
	if err != nil {
		return err
	}
	if err := a.api.DeletePost(ctx, p.ID); err != nil {
		return err
	}
	a.feed.Remove(p.ID)
	fmt.Fprintf(a.out, "Deleted post %d\n", p.ID)
	return nil
}

func (a *App) findListed(postID int64) (models.PostView, bool) {
	for _, p := range a.feed.Posts() {
		if p.ID == postID {
			return p, true
		}
	}
	return models.PostView{}, false
}
