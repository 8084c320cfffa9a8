package models

import "time"

// RefreshToken is a persisted, single-use refresh credential.
type RefreshToken struct {
	ID           string
	CredentialID string
	Token        string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the record is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
