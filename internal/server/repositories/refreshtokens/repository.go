// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/server/models"
)

// Repository defines operations for issuing, retrieving, rotating and
// revoking refresh tokens.
type Repository interface {
	// Create stores t. t.ID must be set by the caller.
	Create(ctx context.Context, t *models.RefreshToken) (*models.RefreshToken, error)

	// Find looks up a record by its token string.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// FindLatestByCredential returns the most recently created record of the
	// credential, expired or not.
	FindLatestByCredential(ctx context.Context, credentialID string) (*models.RefreshToken, error)

	// Update replaces token and expiry of an existing record in place.
	Update(ctx context.Context, id, token string, expiresAt time.Time) error

	// Delete removes a record by id. It returns common.ErrorNotFound when no
	// row was deleted, so of two concurrent redemptions only one succeeds.
	Delete(ctx context.Context, id string) error

	// DeleteByToken removes every record carrying token. Zero matches is not
	// an error.
	DeleteByToken(ctx context.Context, token string) (int64, error)

	// DeleteByCredential removes every record of the credential. Zero
	// matches is not an error.
	DeleteByCredential(ctx context.Context, credentialID string) (int64, error)
}
