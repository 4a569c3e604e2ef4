package migrations

import (
	"errors"
	"fmt"

	"github.com/cristianortiz/sneakerbid/internal/shared/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// RunMigrations applies every pending migration found at sourceURL (e.g. file://internal/shared/db/migrations/sql).
func RunMigrations(sourceURL, dbURL string) error {
	log.Info("RunMigrations", zap.String("source", sourceURL))
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}
