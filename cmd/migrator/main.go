package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/lmittmann/tint"

	"github.com/vancomm/regionsweeper/internal/config"
	"github.com/vancomm/regionsweeper/internal/database"
	"github.com/vancomm/regionsweeper/migrations"
)

var down = flag.Bool("down", false, "roll back every migration after applying them")

func main() {
	flag.Parse()

	var logger *slog.Logger
	if config.Development() {
		logger = slog.New(tint.NewHandler(os.Stderr, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	url, err := config.DbURL()
	if err != nil {
		logger.Error("failed to read db config", slog.Any("error", err))
		os.Exit(1)
	}

	migrator, err := database.Migrate(url, migrations.FS)
	if err != nil {
		logger.Error("failed to migrate", slog.Any("error", err))
		os.Exit(1)
	}
	defer migrator.Close()

	if *down {
		if err := migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("failed to roll back", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("rolled back all migrations")
		return
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		logger.Error("failed to check migration version", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migration successful", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
}
