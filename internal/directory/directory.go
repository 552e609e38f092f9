package directory

import (
	"context"

	"admin-backend/internal/auth"
)

// User is a directory record. Email and DisplayName here are current
// state, unlike the copies cached on a session at login.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Directory is the external user directory. FindByID is consulted on
// every resolution to confirm the referenced identity still exists;
// FindOrCreate runs only at session creation.
//
// FindByID returns (nil, nil) when no such user exists.
type Directory interface {
	FindByID(ctx context.Context, userID string) (*User, error)
	FindOrCreate(ctx context.Context, identity *auth.Identity) (*User, error)
}
