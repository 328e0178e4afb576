package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

func (a *App) Comments(ctx context.Context, args []string) error {
	p, err := a.listedPost(args, "comments <n>")
	if err != nil {
		return err
	}
	list, err := a.api.Comments(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No comments yet")
		return nil
	}
	for _, c := range list {
		fmt.Fprintf(a.out, "%s  %s: %s\n", c.CreatedAt.Local().Format("01-02 15:04"), c.AuthorName, c.Content)
	}
	return nil
}

func (a *App) Comment(ctx context.Context, args []string) error {
	p, err := a.listedPost(args, "comment <n>")
	if err != nil {
		return err
	}
	text, err := getSimpleText(a.reader, "Enter comment", a.out)
	if err != nil {
		return err
	}
	c, err := a.api.AddComment(ctx, p.ID, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Commented on post %d (comment id %d)\n", p.ID, c.ID)
	return nil
}

func (a *App) Notices(ctx context.Context, _ []string) error {
	list, err := a.api.Notifications(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No notifications")
		return nil
	}
	for _, n := range list {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %s %s %s your post %d\n", mark,
			n.CreatedAt.Local().Format("01-02 15:04"), n.SenderName, noticeVerb(n.Type), n.PostID)
	}
	return nil
}

func noticeVerb(kind string) string {
	switch kind {
	case "like":
		return "liked"
	case "comment":
		return "commented on"
	}
	return kind
}

func (a *App) Read(ctx context.Context, _ []string) error {
	n, err := a.api.MarkNotificationsRead(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d notifications marked as read\n", n)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	q := strings.Join(args, " ")
	if q == "" {
		return fmt.Errorf("%w: search <query>", errUsage)
	}
	users, err := a.api.SearchUsers(ctx, q)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users found")
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%d  %s <%s>\n", u.ID, u.Name, u.Email)
	}
	return nil
}

// Profile edits name, course and bio. Empty answers keep the current value.
func (a *App) Profile(ctx context.Context, _ []string) error {
	c, _ := a.session.Claims()
	cur, err := a.api.GetProfile(ctx, c.UserID)
	if err != nil {
		return err
	}
	a.printUser(cur)

	upd := models.ProfileUpdate{Name: cur.Name, Course: cur.Course, Bio: cur.Bio}
	name, err := getSimpleText(a.reader, "Name (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if name != "" {
		upd.Name = name
	}
	course, err := getSimpleText(a.reader, "Course (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if course != "" {
		upd.Course = &course
	}
	bio, err := getSimpleText(a.reader, "Bio (empty keeps current)", a.out)
	if err != nil {
		return err
	}
	if bio != "" {
		upd.Bio = &bio
	}

	u, err := a.api.UpdateProfile(ctx, c.UserID, upd)
	if err != nil {
		return err
	}
	a.session.UpdateDisplay(u.Name, deref(u.AvatarURL))
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	path, err := oneArg(args, "avatar <path>")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	u, err := a.api.UploadAvatar(ctx, client.File{Name: filepath.Base(path), Body: f})
	if err != nil {
		return err
	}
	a.session.UpdateDisplay(u.Name, deref(u.AvatarURL))
	fmt.Fprintf(a.out, "Avatar updated: %s\n", a.mediaURL(u.AvatarURL))
	return nil
}
