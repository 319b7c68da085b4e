package main

import (
	"errors"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/pageza/recipe-creator/backend/config"
	"github.com/pageza/recipe-creator/backend/internal/database"
	"github.com/pageza/recipe-creator/backend/internal/logger"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	steps := flag.Int("steps", 1, "Number of migrations to roll back with -rollback")
	flag.Parse()

	log := logger.SetupDefault(os.Stdout, "info")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Error("DATABASE_URL is not set and configuration failed to load", "error", err)
			os.Exit(1)
		}
		databaseURL = cfg.DatabaseURL()
	}

	m, err := database.NewMigrator(databaseURL)
	if err != nil {
		log.Error("failed to create migrator", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	if *rollback {
		err = m.Steps(-*steps)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("no migrations to apply")
		return
	}
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Error("failed to read schema version", "error", err)
		os.Exit(1)
	}
	log.Info("migrations complete", "version", version, "dirty", dirty)
}
