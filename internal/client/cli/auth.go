package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lanzath/authapi/internal/client/client"
	"github.com/lanzath/authapi/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) promptEmail(email string) (string, error) {
	if email != "" {
		return email, nil
	}
	return getSimpleText(a.reader, "Enter email", a.out)
}

// Signup prompts for whatever was not given on the command line and creates
// the account. The password byte slice is wiped before returning.
func (a *App) Signup(ctx context.Context, name, email string) error {
	email, err := a.promptEmail(email)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeByteArray(password)

	user, err := a.api.Signup(ctx, name, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created: %s (%s)\n", user.Email, user.ID)
	return nil
}

// Login authenticates and stores the issued token in the token file.
func (a *App) Login(ctx context.Context, email string, rememberMe bool) error {
	email, err := a.promptEmail(email)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeByteArray(password)

	session, err := a.api.Login(ctx, email, string(password), rememberMe)
	if err != nil {
		return err
	}

	if err := a.tokens.Save(session.AccessToken); err != nil {
		return err
	}

	if session.ExpiresAt == "" {
		fmt.Fprintln(a.out, "Logged in. Token does not expire.")
	} else {
		fmt.Fprintf(a.out, "Logged in. Token expires at %s UTC.\n", session.ExpiresAt)
	}
	return nil
}

// Logout revokes the stored token and removes it locally. The local copy is
// kept when the server cannot be reached so the call can be repeated.
func (a *App) Logout(ctx context.Context) error {
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}

	msg, err := a.api.Logout(ctx, token)
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	if err := a.tokens.Clear(); err != nil {
		return err
	}

	if msg == "" {
		msg = "Logged out."
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// Me prints the current user as JSON. A rejected token is removed locally.
func (a *App) Me(ctx context.Context) error {
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}

	user, err := a.api.CurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.tokens.Clear()
		}
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(user)
}
