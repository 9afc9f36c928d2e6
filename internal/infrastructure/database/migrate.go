package database

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies all pending up migrations from the given directory
func (p *Postgres) RunMigrations(ctx context.Context, dir string) error {
	migrationsPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("error resolving migrations directory: %w", err)
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.pool.Config().ConnConfig.User,
		p.pool.Config().ConnConfig.Password,
		p.pool.Config().ConnConfig.Host,
		p.pool.Config().ConnConfig.Port,
		p.pool.Config().ConnConfig.Database,
	)

	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		dbURL,
	)
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("error running migrations: %w", err)
	}

	p.log.Info("Migrations completed successfully")
	return nil
}
