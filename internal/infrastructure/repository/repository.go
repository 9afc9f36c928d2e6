package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint name from the oauth schema migrations that enforces the
// one-refresh-token-per-access-token rule. Violations of any other unique
// constraint mean a generated credential collided.
const refreshTokenBindingConstraint = "oauth_refresh_tokens_access_token_id_key"

// uniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505) and names the violated constraint.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}
