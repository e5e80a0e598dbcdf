package database

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/rowad-platform/merit-api/pkg/config"
)

// Migrator applies SQL migrations from the configured directory.
type Migrator struct {
	cfg config.DatabaseConfig
}

// NewMigrator constructs a Migrator for the database config.
func NewMigrator(cfg config.DatabaseConfig) *Migrator {
	return &Migrator{cfg: cfg}
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	mig, err := m.open()
	if err != nil {
		return err
	}
	defer mig.Close()
	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Down rolls back all migrations.
func (m *Migrator) Down() error {
	mig, err := m.open()
	if err != nil {
		return err
	}
	defer mig.Close()
	if err := mig.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}
	return nil
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	dir := m.cfg.MigrationsDir
	if dir == "" {
		dir = "migrations"
	}
	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(m.cfg.User),
		url.QueryEscape(m.cfg.Password),
		m.cfg.Host,
		m.cfg.Port,
		m.cfg.Name,
		m.cfg.SSLMode,
	)
	mig, err := migrate.New("file://"+dir, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open migrator: %w", err)
	}
	return mig, nil
}
