// Package models defines server-side data models persisted in the database.
package models

import "time"

// Credential is the locally owned authentication record of one principal.
// Its ID is shared with the profile record held by the user service.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
