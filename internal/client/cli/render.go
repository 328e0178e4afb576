package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// mediaURL resolves a server-relative media path against the server URL.
func (a *App) mediaURL(p *string) string {
	v := deref(p)
	if v == "" || strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return v
	}
	return strings.TrimRight(a.config.ServerURL, "/") + "/" + strings.TrimLeft(v, "/")
}

func (a *App) printPosts() {
	posts := a.feed.Posts()
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts yet")
		return
	}
	for i, p := range posts {
		heart := "♡"
		if p.LikedByMe {
			heart = "♥"
		}
		fmt.Fprintf(a.out, "[%d] %s  %s\n", i+1, p.AuthorName, p.CreatedAt.Local().Format("2006-01-02 15:04"))
		if t := p.Text(); t != "" {
			fmt.Fprintf(a.out, "    %s\n", strings.ReplaceAll(t, "\n", "\n    "))
		}
		if p.ImageURL != nil {
			fmt.Fprintf(a.out, "    image: %s\n", a.mediaURL(p.ImageURL))
		}
		fmt.Fprintf(a.out, "    %s %d  comments %d\n", heart, p.TotalLikes, p.TotalComments)
	}
}

func (a *App) printUser(u *models.User) {
	fmt.Fprintf(a.out, "%s (id %d)\n", u.Name, u.ID)
	if u.Course != nil {
		fmt.Fprintf(a.out, "course: %s\n", *u.Course)
	}
	if u.Bio != nil {
		fmt.Fprintf(a.out, "bio: %s\n", *u.Bio)
	}
	if u.AvatarURL != nil {
		fmt.Fprintf(a.out, "avatar: %s\n", a.mediaURL(u.AvatarURL))
	}
}
