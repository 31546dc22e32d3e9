package migrations

import (
	"errors"

	"encheres/internal/shared/db"
	"encheres/internal/shared/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// RunMigrations applies pending schema migrations from the sql directory.
func RunMigrations() error {
	dbURL := db.BuildPostgresDSN()
	log.Info("running migrations", zap.String("source", "internal/shared/db/migrations/sql"))
	m, err := migrate.New(
		"file://internal/shared/db/migrations/sql",
		dbURL,
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
