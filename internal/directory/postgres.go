package directory

import (
	"context"
	"database/sql"
	"errors"

	"admin-backend/internal/auth"
	"admin-backend/internal/db"

	"github.com/google/uuid"
)

// PostgresDirectory is the canonical directory backed by the users and
// identities tables.
type PostgresDirectory struct {
	db *db.DB
}

func NewPostgresDirectory(db *db.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) FindByID(ctx context.Context, userID string) (*User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		// Not a directory key at all; same outcome as a deleted account.
		return nil, nil
	}

	var (
		email       string
		displayName sql.NullString
	)
	err = d.db.QueryRowContext(ctx, `
		SELECT email, display_name
		FROM public.users
		WHERE id = $1
		  AND status = 'active'
	`, id).Scan(&email, &displayName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &User{
		ID:          id.String(),
		Email:       email,
		DisplayName: displayName.String,
	}, nil
}

func (d *PostgresDirectory) FindOrCreate(
	ctx context.Context,
	identity *auth.Identity,
) (*User, error) {

	if identity == nil {
		return nil, errors.New("identity is nil")
	}

	// 1. Try identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err := d.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM public.identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return d.byID(ctx, userID)
	}

	if err != sql.ErrNoRows {
		return nil, err
	}

	// 2. Try email-based linking (existing user, new provider)
	err = d.db.QueryRowContext(ctx, `
		SELECT id
		FROM public.users
		WHERE LOWER(email) = LOWER($1)
	`,
		identity.Email,
	).Scan(&userID)

	if err == nil {
		if err := d.link(ctx, userID, identity); err != nil {
			return nil, err
		}
		return d.byID(ctx, userID)
	}

	if err != sql.ErrNoRows {
		return nil, err
	}

	// 3. Create new user
	err = d.db.QueryRowContext(ctx, `
		INSERT INTO public.users (email, display_name, email_verified)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id
	`,
		identity.Email,
		identity.Name,
		identity.EmailVerified,
	).Scan(&userID)

	if err != nil {
		return nil, err
	}

	// 4. Create identity mapping
	if err := d.link(ctx, userID, identity); err != nil {
		return nil, err
	}

	return d.byID(ctx, userID)
}

func (d *PostgresDirectory) link(ctx context.Context, userID uuid.UUID, identity *auth.Identity) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO public.identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		identity.Provider,
		identity.ProviderUserID,
	)
	return err
}

func (d *PostgresDirectory) byID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := d.FindByID(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.New("directory: user vanished during creation")
	}
	return u, nil
}
