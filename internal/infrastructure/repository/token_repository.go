package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/ipede/oauth-provider-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// TokenRepository implements domain.TokenRepository using PostgreSQL.
// Refresh tokens reference their access token with ON DELETE CASCADE, so
// removing an access token always takes its refresh token with it.
type TokenRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewTokenRepository(db *database.Postgres, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TokenRepository) CreateAccessToken(ctx context.Context, token *domain.AccessToken) error {
	_, err := r.db.ExecRaw(ctx, `
		INSERT INTO oauth_access_tokens (id, token, application_id, owner_id, scope, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, token.ID.String(), token.Token, token.ApplicationID.String(), token.OwnerID.String(),
		domain.JoinScope(token.Scope), token.ExpiresAt, token.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrUniquenessCollision
		}
		r.logger.Error("failed to create access token", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	_, err := r.db.ExecRaw(ctx, `
		INSERT INTO oauth_refresh_tokens (id, token, access_token_id, application_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, token.ID.String(), token.Token, token.AccessTokenID.String(), token.ApplicationID.String(),
		token.OwnerID.String(), token.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == refreshTokenBindingConstraint {
				return domain.ErrRefreshTokenConflict
			}
			return domain.ErrUniquenessCollision
		}
		r.logger.Error("failed to create refresh token", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *TokenRepository) CreateTokenPair(ctx context.Context, pair *domain.TokenPair) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		r.logger.Error("failed to begin token pair creation", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	defer tx.Rollback(ctx)

	if err := r.insertAccessToken(ctx, tx, pair.AccessToken); err != nil {
		return err
	}
	if err := r.insertRefreshToken(ctx, tx, pair.RefreshToken); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit token pair", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *TokenRepository) FindAccessToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, token, application_id, owner_id, scope, expires_at, created_at
		FROM oauth_access_tokens
		WHERE token = $1
	`, token)
	return r.scanAccessToken(row)
}

func (r *TokenRepository) FindAccessTokenByID(ctx context.Context, id ulid.ULID) (*domain.AccessToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, token, application_id, owner_id, scope, expires_at, created_at
		FROM oauth_access_tokens
		WHERE id = $1
	`, id.String())
	return r.scanAccessToken(row)
}

func (r *TokenRepository) FindRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, token, access_token_id, application_id, owner_id, created_at
		FROM oauth_refresh_tokens
		WHERE token = $1
	`, token)
	return r.scanRefreshToken(row)
}

func (r *TokenRepository) FindRefreshTokenByAccessTokenID(ctx context.Context, accessTokenID ulid.ULID) (*domain.RefreshToken, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, token, access_token_id, application_id, owner_id, created_at
		FROM oauth_refresh_tokens
		WHERE access_token_id = $1
	`, accessTokenID.String())
	return r.scanRefreshToken(row)
}

// Rotate removes the old refresh token in a single conditional delete, so
// two concurrent rotations of the same token cannot both succeed: the
// loser sees no row and fails with ErrRefreshTokenNotFound before anything
// is stored.
func (r *TokenRepository) Rotate(ctx context.Context, oldRefreshToken string, pair *domain.TokenPair) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		r.logger.Error("failed to begin token rotation", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	defer tx.Rollback(ctx)

	var oldAccessTokenID string
	err = tx.QueryRow(ctx, `
		DELETE FROM oauth_refresh_tokens
		WHERE token = $1
		RETURNING access_token_id
	`, oldRefreshToken).Scan(&oldAccessTokenID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRefreshTokenNotFound
		}
		r.logger.Error("failed to remove rotated refresh token", zap.Error(err))
		return domain.ErrDatabaseQuery
	}

	if _, err := tx.Exec(ctx, "DELETE FROM oauth_access_tokens WHERE id = $1", oldAccessTokenID); err != nil {
		r.logger.Error("failed to remove rotated access token", zap.Error(err))
		return domain.ErrDatabaseQuery
	}

	if err := r.insertAccessToken(ctx, tx, pair.AccessToken); err != nil {
		return err
	}
	if err := r.insertRefreshToken(ctx, tx, pair.RefreshToken); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("failed to commit token rotation", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

// RevokeAccessToken removes an access token; its refresh token goes with
// it. Revoking an unknown token is a no-op.
func (r *TokenRepository) RevokeAccessToken(ctx context.Context, token string) error {
	return r.db.Exec(ctx, "DELETE FROM oauth_access_tokens WHERE token = $1", token)
}

// RevokeRefreshToken removes a refresh token, leaving its access token to
// expire on its own. Revoking an unknown token is a no-op.
func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	return r.db.Exec(ctx, "DELETE FROM oauth_refresh_tokens WHERE token = $1", token)
}

func (r *TokenRepository) DeleteByApplicationID(ctx context.Context, applicationID ulid.ULID) error {
	return r.db.Exec(ctx, "DELETE FROM oauth_access_tokens WHERE application_id = $1", applicationID.String())
}

// DeleteExpiredAccessTokens sweeps expired access tokens that no refresh
// token can still redeem. Rows with a live refresh binding are kept: the
// refresh token carries no expiry of its own and exists to replace an
// access token that has already gone stale.
func (r *TokenRepository) DeleteExpiredAccessTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.ExecRaw(ctx, `
		DELETE FROM oauth_access_tokens
		WHERE expires_at <= $1
		  AND id NOT IN (SELECT access_token_id FROM oauth_refresh_tokens)
	`, before)
	if err != nil {
		r.logger.Error("failed to delete expired access tokens", zap.Error(err))
		return 0, domain.ErrDatabaseQuery
	}
	return tag.RowsAffected(), nil
}

func (r *TokenRepository) insertAccessToken(ctx context.Context, tx pgx.Tx, token *domain.AccessToken) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO oauth_access_tokens (id, token, application_id, owner_id, scope, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, token.ID.String(), token.Token, token.ApplicationID.String(), token.OwnerID.String(),
		domain.JoinScope(token.Scope), token.ExpiresAt, token.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrUniquenessCollision
		}
		r.logger.Error("failed to insert access token", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *TokenRepository) insertRefreshToken(ctx context.Context, tx pgx.Tx, token *domain.RefreshToken) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO oauth_refresh_tokens (id, token, access_token_id, application_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, token.ID.String(), token.Token, token.AccessTokenID.String(), token.ApplicationID.String(),
		token.OwnerID.String(), token.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == refreshTokenBindingConstraint {
				return domain.ErrRefreshTokenConflict
			}
			return domain.ErrUniquenessCollision
		}
		r.logger.Error("failed to insert refresh token", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *TokenRepository) scanAccessToken(row pgx.Row) (*domain.AccessToken, error) {
	token := &domain.AccessToken{}
	var scope string
	err := row.Scan(&token.ID, &token.Token, &token.ApplicationID, &token.OwnerID,
		&scope, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccessTokenNotFound
		}
		r.logger.Error("failed to scan access token", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	token.Scope = domain.ParseScope(scope)
	return token, nil
}

func (r *TokenRepository) scanRefreshToken(row pgx.Row) (*domain.RefreshToken, error) {
	token := &domain.RefreshToken{}
	err := row.Scan(&token.ID, &token.Token, &token.AccessTokenID, &token.ApplicationID,
		&token.OwnerID, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRefreshTokenNotFound
		}
		r.logger.Error("failed to scan refresh token", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	return token, nil
}
