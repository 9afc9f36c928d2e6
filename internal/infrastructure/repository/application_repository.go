package repository

import (
	"context"
	"errors"

	"github.com/ipede/oauth-provider-service/internal/domain"
	"github.com/ipede/oauth-provider-service/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ApplicationRepository implements domain.ApplicationRepository using
// PostgreSQL
type ApplicationRepository struct {
	db     *database.Postgres
	logger *zap.Logger
}

func NewApplicationRepository(db *database.Postgres, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	_, err := r.db.ExecRaw(ctx, `
		INSERT INTO oauth_applications (id, client_id, client_secret, client_type, authorization_grant_type, redirect_uris, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, app.ID.String(), app.ClientID, app.ClientSecret, app.ClientType, app.GrantType,
		domain.JoinURIList(app.RedirectURIs), app.Name, app.OwnerID.String(), app.CreatedAt, app.UpdatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrUniquenessCollision
		}
		r.logger.Error("failed to create application", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.Application, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, client_id, client_secret, client_type, authorization_grant_type, redirect_uris, name, owner_id, created_at, updated_at
		FROM oauth_applications
		WHERE id = $1
	`, id.String())
	return r.scanApplication(row)
}

func (r *ApplicationRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Application, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, client_id, client_secret, client_type, authorization_grant_type, redirect_uris, name, owner_id, created_at, updated_at
		FROM oauth_applications
		WHERE client_id = $1
	`, clientID)
	return r.scanApplication(row)
}

func (r *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	tag, err := r.db.ExecRaw(ctx, `
		UPDATE oauth_applications
		SET client_secret = $1, client_type = $2, authorization_grant_type = $3, redirect_uris = $4, name = $5, updated_at = $6
		WHERE id = $7
	`, app.ClientSecret, app.ClientType, app.GrantType, domain.JoinURIList(app.RedirectURIs),
		app.Name, app.UpdatedAt, app.ID.String())
	if err != nil {
		r.logger.Error("failed to update application", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.ExecRaw(ctx, "DELETE FROM oauth_applications WHERE id = $1", id.String())
	if err != nil {
		r.logger.Error("failed to delete application", zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]*domain.Application, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_id, client_secret, client_type, authorization_grant_type, redirect_uris, name, owner_id, created_at, updated_at
		FROM oauth_applications
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		r.logger.Error("failed to list applications", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	defer rows.Close()

	var apps []*domain.Application
	for rows.Next() {
		app := &domain.Application{}
		var redirectURIs string
		err := rows.Scan(&app.ID, &app.ClientID, &app.ClientSecret, &app.ClientType, &app.GrantType,
			&redirectURIs, &app.Name, &app.OwnerID, &app.CreatedAt, &app.UpdatedAt)
		if err != nil {
			r.logger.Error("failed to scan application", zap.Error(err))
			return nil, domain.ErrDatabaseQuery
		}
		app.RedirectURIs = domain.ParseURIList(redirectURIs)
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) scanApplication(row pgx.Row) (*domain.Application, error) {
	app := &domain.Application{}
	var redirectURIs string
	err := row.Scan(&app.ID, &app.ClientID, &app.ClientSecret, &app.ClientType, &app.GrantType,
		&redirectURIs, &app.Name, &app.OwnerID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		r.logger.Error("failed to scan application", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	app.RedirectURIs = domain.ParseURIList(redirectURIs)
	return app, nil
}
