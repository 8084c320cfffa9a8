// Package credentials declares the repository contract for credential
// records and its PostgreSQL implementation.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/noteauth/internal/server/models"
)

type Repository interface {
	// Create inserts c. c.ID must be set by the caller. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	GetByID(ctx context.Context, id string) (*models.Credential, error)
	// Delete removes the credential; its refresh tokens go with it.
	// common.ErrorNotFound when nothing matched.
	Delete(ctx context.Context, id string) error
}
