package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates the account. It
// does not sign in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can now login.")
	return nil
}

// Login authenticates against the server and signs the session in. The
// engine is observed right away so local data migrates without waiting
// for the next tick.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		return errors.New("already logged in, logout first")
	}

	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, err := a.auth.Login(ctx, userName, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return fmt.Errorf("server unavailable, keep working locally: %w", err)
		}
		return err
	}

	if _, err := a.session.SignIn(token); err != nil {
		return fmt.Errorf("unusable access token: %w", err)
	}
	a.log.Info(ctx, "logged in", "user", userName)

	if err := a.engine.Observe(ctx); err != nil {
		a.log.Error(ctx, "sign-in transition", "error", err)
		fmt.Fprintln(a.out, "Logged in, but local data could not be migrated yet. Run 'sync' to retry.")
		return nil
	}

	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// Logout ends the session. The sign-out subscription of the engine copies
// the account data to the device before the remote store is dropped. A
// failed copy is returned as an error after the session is cleared.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errors.New("not logged in")
	}

	a.session.SignOut(ctx)
	if err := a.auth.ClearSession(ctx); err != nil {
		return err
	}

	if err := a.engine.SignOutErr(); err != nil {
		return fmt.Errorf("logged out, but the offline copy could not be saved: %w", err)
	}
	fmt.Fprintln(a.out, "Logged out. Your data stays available on this device.")
	return nil
}
