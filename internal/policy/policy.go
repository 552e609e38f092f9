// Package policy decides which identities hold elevated privileges.
// The decision is made against current state at every resolution, keyed on
// the directory's current email for the user, never on attributes cached
// in a session. Changing the backing policy takes effect on the next
// request without re-login.
package policy

import "context"

type Policy interface {
	IsElevated(ctx context.Context, email string) (bool, error)
}
