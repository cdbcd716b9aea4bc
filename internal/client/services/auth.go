// Package services contains application services for the notekeeper client.
// This file defines the authentication service: login, register, liveness
// probe and the persisted session token that survives restarts.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
)

// kv keys of the persisted session. Cache slots share the table, so the
// session is removed key by key rather than with Clear.
const (
	keyUsername = "session.username"
	keyToken    = "session.token"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, persist and return the access token.
//   - Register: create a new user on the server.
//   - SavedToken: the token persisted by the last Login, or "".
//   - ClearSession: forget the persisted token (on logout).
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (string, error)
	Register(ctx context.Context, username string, password []byte) error
	SavedToken(ctx context.Context) (string, error)
	ClearSession(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

// Login derives the verifier from (password, salt) and exchanges it for an
// access token.
func (a *authService) Login(ctx context.Context, userName string, password []byte) (string, error) {
	salt, err := a.client.GetSalt(ctx, userName)
	if err != nil {
		return "", fmt.Errorf("get salt error: %w", err)
	}

	masterKey := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(masterKey)

	token, err := a.client.Login(ctx, userName, cryptox.MakeVerifier(masterKey))
	if err != nil {
		return "", fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, userName, token); err != nil {
		return "", fmt.Errorf("session saving error: %w", err)
	}
	return token, nil
}

func (a *authService) saveSession(ctx context.Context, userName, token string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyUsername, []byte(userName)); err != nil {
			return err
		}
		return repo.Set(ctx, keyToken, []byte(token))
	})
}

// Register generates a random salt, derives a master key from the password,
// computes a verifier and sends salt and verifier to the server.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(32)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	return a.client.Register(ctx, username, salt, cryptox.MakeVerifier(key))
}

func (a *authService) SavedToken(ctx context.Context) (string, error) {
	token, err := kv.NewSQLiteRepository(a.db).Get(ctx, keyToken)
	if err != nil {
		return "", err
	}
	return string(token), nil
}

func (a *authService) ClearSession(ctx context.Context) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyUsername)
	})
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
