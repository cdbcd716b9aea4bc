// Package services contains the remote store business logic: account
// registration and login (UserService) and owner-scoped entity
// documents (RecordService).
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

// UserService registers accounts and mints access tokens. Passwords never
// reach the server: clients send a verifier derived from their master key.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func (s *UserService) Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(salt) == 0 || len(verifier) == 0 {
		return nil, common.ErrorValidation
	}

	user := &models.User{UserName: username, Salt: salt, Verifier: verifier}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// GetSalt returns the user's stored salt or a random salt if the user is
// absent, so the response does not reveal which names exist.
func (s *UserService) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.GenerateRandByteArray(32), nil
		}
		return nil, common.ErrorInternal
	}
	return user.Salt, nil
}

// Login checks verifierCandidate and returns a fresh access token.
func (s *UserService) Login(ctx context.Context, userName string, verifierCandidate []byte) (string, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}
	if subtle.ConstantTimeCompare(user.Verifier, verifierCandidate) != 1 {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}
