package credentials

import (
	"context"
	"database/sql"
	"errors"

	"admin-backend/internal/db"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
)

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// Register creates local credentials for the email, creating the directory
// user first if needed. The display name is captured here because a local
// account has no identity provider to assert one later.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
	displayName string,
) (string, error) {

	var userID uuid.UUID

	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&userID)

	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO users (email, display_name, email_verified)
			VALUES ($1, NULLIF($2, ''), false)
			RETURNING id
		`, email, displayName).Scan(&userID)
	}

	if err != nil {
		return "", err
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = $1
		)
	`, userID).Scan(&exists)

	if err != nil {
		return "", err
	}

	if exists {
		return "", ErrAlreadyRegistered
	}

	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)

	if err != nil {
		return "", err
	}

	// A pre-existing user keeps their name; only fill a blank one.
	if displayName != "" {
		_, _ = s.db.ExecContext(ctx, `
			UPDATE users SET display_name = $2, updated_at = NOW()
			WHERE id = $1 AND display_name IS NULL
		`, userID, displayName)
	}

	return userID.String(), nil
}

// Authenticate verifies the email+password pair and returns the user ID
// along with the stored display name, so sessions started from local
// logins carry the same identity claims as provider-issued ones.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (string, string, error) {

	var (
		userID       uuid.UUID
		displayName  sql.NullString
		passwordHash string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.display_name, c.password_hash
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`, email).Scan(&userID, &displayName, &passwordHash)

	if err != nil {
		// hide whether user exists or not
		return "", "", ErrInvalidCredentials
	}

	if err := VerifyPassword(passwordHash, password); err != nil {
		return "", "", ErrInvalidCredentials
	}

	return userID.String(), displayName.String, nil
}
