package cli

import (
	"context"
	"errors"
	"fmt"
)

// Register prompts for name, email and password and creates an account.
func (a *App) Register(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s (id %d). You can log in now.\n", u.Name, u.ID)
	return nil
}

// Login prompts for credentials and stores the issued token.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := a.session.Login(ctx, res.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", res.User.Name)
	return nil
}

// Logout forgets the token locally; the server is not contacted.
func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return err
}

func (a *App) WhoAmI(_ context.Context, _ []string) error {
	c, ok := a.session.Claims()
	if !ok {
		return errors.New("not logged in")
	}
	fmt.Fprintf(a.out, "%s <%s> (id %d)\n", c.Name, c.Email, c.UserID)
	if c.AvatarURL != "" {
		fmt.Fprintf(a.out, "avatar: %s\n", a.mediaURL(&c.AvatarURL))
	}
	if !c.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "session valid until %s\n", c.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
