package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pageza/recipe-creator/backend/internal/models"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrator over the embedded SQL files.
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending postgres migrations. It is a no-op when
// the schema is already current.
func RunMigrations(databaseURL string, log *slog.Logger) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		log.Info("database schema ready", "version", version, "dirty", dirty)
	}
	return nil
}

// AutoMigrate creates the schema with gorm. Used for sqlite, which cannot run
// the postgres migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Favorite{},
	)
}

// Migrate brings the schema up to date for whichever dialect db uses.
func Migrate(db *gorm.DB, databaseURL string, log *slog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("using gorm auto-migration for sqlite")
		return AutoMigrate(db)
	}
	return RunMigrations(databaseURL, log)
}
