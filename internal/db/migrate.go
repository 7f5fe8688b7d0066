package db

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations brings the storefront schema and seed catalog up to date.
func RunMigrations(dsn string, logger *log.Logger) error {
	m, closeFn, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	before, _, _ := m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	after, dirty, _ := m.Version()
	logger.Printf("migrations: version %d -> %d dirty=%t", before, after, dirty)
	return nil
}

func newMigrator(dsn string) (*migrate.Migrate, func(), error) {
	sqlDB, err := openDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open db for migrations: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migration source: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: "storefront_schema_migrations"})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("migrate instance: %w", err)
	}
	return m, func() {
		_, _ = m.Close()
		_ = sqlDB.Close()
	}, nil
}
