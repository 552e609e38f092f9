package policy

import (
	"context"

	"admin-backend/internal/db"
)

// PostgresPolicy checks membership in the admins table.
type PostgresPolicy struct {
	db *db.DB
}

func NewPostgresPolicy(db *db.DB) *PostgresPolicy {
	return &PostgresPolicy{db: db}
}

func (p *PostgresPolicy) IsElevated(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}

	var elevated bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM public.admins
			WHERE LOWER(email) = LOWER($1)
		)
	`, email).Scan(&elevated)

	if err != nil {
		return false, err
	}

	return elevated, nil
}

// Seed inserts the given emails into the admins table. Used at startup to
// bootstrap the policy from configuration; existing rows are left alone.
func (p *PostgresPolicy) Seed(ctx context.Context, emails []string) error {
	for _, email := range emails {
		if email == "" {
			continue
		}
		_, err := p.db.ExecContext(ctx, `
			INSERT INTO public.admins (email)
			VALUES (LOWER($1))
			ON CONFLICT (email) DO NOTHING
		`, email)
		if err != nil {
			return err
		}
	}
	return nil
}
