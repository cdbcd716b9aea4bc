package users

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound for an unknown user name.
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
