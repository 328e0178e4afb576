package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

var (
	errUsage       = errors.New("usage")
	errNoSuchPost  = errors.New("no such post in the last listing; run feed first")
	errSessionGone = errors.New("session expired, please log in again")
)

func (a *App) commands() []command {
	return []command{
		{name: "register", usage: "register", run: a.Register},
		{name: "login", usage: "login", run: a.Login},
		{name: "logout", usage: "logout", auth: true, run: a.Logout},
		{name: "whoami", usage: "whoami", run: a.WhoAmI},
		{name: "feed", usage: "feed", run: a.Feed},
		{name: "mine", usage: "mine", auth: true, run: a.authed(a.Mine)},
		{name: "user", usage: "user <id>", run: a.User},
		{name: "post", usage: "post", auth: true, run: a.authed(a.Post)},
		{name: "image", usage: "image <path>", auth: true, run: a.authed(a.Image)},
		{name: "like", usage: "like <n>", auth: true, run: a.authed(a.Like)},
		{name: "delete", usage: "delete <n>", auth: true, run: a.authed(a.Delete)},
		{name: "comments", usage: "comments <n>", auth: true, run: a.authed(a.Comments)},
		{name: "comment", usage: "comment <n>", auth: true, run: a.authed(a.Comment)},
		{name: "notices", usage: "notices", auth: true, run: a.authed(a.Notices)},
		{name: "read", usage: "read", auth: true, run: a.authed(a.Read)},
		{name: "search", usage: "search <query>", auth: true, run: a.authed(a.Search)},
		{name: "profile", usage: "profile", auth: true, run: a.authed(a.Profile)},
		{name: "avatar", usage: "avatar <path>", auth: true, run: a.authed(a.Avatar)},
	}
}

// authed drops the local session when the server rejects the token.
func (a *App) authed(fn func(ctx context.Context, args []string) error) func(ctx context.Context, args []string) error {
	return func(ctx context.Context, args []string) error {
		err := fn(ctx, args)
		if errors.Is(err, client.ErrUnauthorized) {
			if lerr := a.session.Logout(ctx); lerr != nil {
				a.logger.Warn(ctx, "error clearing session", "error", lerr)
			}
			return errSessionGone
		}
		return err
	}
}

func oneArg(args []string, usage string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: %s", errUsage, usage)
	}
	return args[0], nil
}

func intArg(args []string, usage string) (int64, error) {
	s, err := oneArg(args, usage)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	return n, nil
}

// listedPost resolves the n-th post of the last listing.
func (a *App) listedPost(args []string, usage string) (models.PostView, error) {
	n, err := intArg(args, usage)
	if err != nil {
		return models.PostView{}, err
	}
	p, ok := a.feed.At(int(n))
	if !ok {
		return models.PostView{}, errNoSuchPost
	}
	return p, nil
}
