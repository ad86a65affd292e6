package middleware

import (
	"context"
	"fmt"

	"sunnah_sayings/internal/identity"
)

// AdminChecker reports whether the user behind an email holds the admin role
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// RequireAdmin denies callers whose user record is missing or is not an
// admin. The record is looked up on every request.
func RequireAdmin(checker AdminChecker) ClaimGuard {
	return ClaimGuard{
		Name: "admin",
		Check: func(ctx context.Context, claim *identity.Claim) error {
			ok, err := checker.IsAdmin(ctx, claim.Email)
			if err != nil {
				return fmt.Errorf("admin lookup: %w", err)
			}
			if !ok {
				return ErrForbidden
			}
			return nil
		},
	}
}
