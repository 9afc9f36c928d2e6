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

// GrantRepository implements domain.GrantRepository using PostgreSQL
type GrantRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewGrantRepository(db *database.Postgres, logger *zap.Logger) *GrantRepository {
	return &GrantRepository{
		db:     db,
		logger: logger,
	}
}

func (r *GrantRepository) Create(ctx context.Context, grant *domain.Grant) error {
	_, err := r.db.ExecRaw(ctx, `
		INSERT INTO oauth_grants (code, application_id, owner_id, redirect_uri, scope, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, grant.Code, grant.ApplicationID.String(), grant.OwnerID.String(), grant.RedirectURI,
		domain.JoinScope(grant.Scope), grant.ExpiresAt, grant.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrUniquenessCollision
		}
		r.logger.Error("failed to create grant", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *GrantRepository) FindByCode(ctx context.Context, code string) (*domain.Grant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT code, application_id, owner_id, redirect_uri, scope, expires_at, created_at
		FROM oauth_grants
		WHERE code = $1
	`, code)
	return r.scanGrant(row)
}

// ConsumeByCode removes the grant in a single conditional delete, so a code
// is handed out at most once even under concurrent exchange attempts.
func (r *GrantRepository) ConsumeByCode(ctx context.Context, code string) (*domain.Grant, error) {
	row := r.db.QueryRow(ctx, `
		DELETE FROM oauth_grants
		WHERE code = $1
		RETURNING code, application_id, owner_id, redirect_uri, scope, expires_at, created_at
	`, code)
	return r.scanGrant(row)
}

func (r *GrantRepository) Delete(ctx context.Context, code string) error {
	return r.db.Exec(ctx, "DELETE FROM oauth_grants WHERE code = $1", code)
}

func (r *GrantRepository) DeleteByApplicationID(ctx context.Context, applicationID ulid.ULID) error {
	return r.db.Exec(ctx, "DELETE FROM oauth_grants WHERE application_id = $1", applicationID.String())
}

func (r *GrantRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.ExecRaw(ctx, "DELETE FROM oauth_grants WHERE expires_at <= $1", before)
	if err != nil {
		r.logger.Error("failed to delete expired grants", zap.Error(err))
		return 0, domain.ErrDatabaseQuery
	}
	return tag.RowsAffected(), nil
}

func (r *GrantRepository) scanGrant(row pgx.Row) (*domain.Grant, error) {
	grant := &domain.Grant{}
	var scope string
	err := row.Scan(&grant.Code, &grant.ApplicationID, &grant.OwnerID, &grant.RedirectURI,
		&scope, &grant.ExpiresAt, &grant.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGrantNotFound
		}
		r.logger.Error("failed to scan grant", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	grant.Scope = domain.ParseScope(scope)
	return grant, nil
}
