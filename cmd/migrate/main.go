// cmd/migrate/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"placement-tracker/internal/app"
	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/schema"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to configs/config.yaml)")
	seed := flag.Bool("seed", false, "Seed the default score types after migrating")
	withIndex := flag.Bool("index", false, "Create the Elasticsearch student index if it is missing")
	flag.Parse()

	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, "migrate", app.Options{Elasticsearch: *withIndex})
	if err != nil {
		bootLog.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	if err := run(ctx, a, *seed || cfg.Import.SeedScoreTypes, *withIndex); err != nil {
		a.ZapLog.Error("migrate failed", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, seed, withIndex bool) error {
	migrator := schema.NewMigrator(a.DB, a.Log)
	if err := migrator.Migrate(ctx); err != nil {
		return err
	}
	a.ZapLog.Info("Schema is up to date")

	if seed {
		created, err := migrator.SeedScoreTypes(ctx, schema.DefaultScoreTypes)
		if err != nil {
			return err
		}
		a.ZapLog.Info("Score types seeded", zap.Int("created", created))
	}

	if withIndex {
		index := a.StudentIndex()
		if index == nil {
			a.ZapLog.Warn("Elasticsearch is not enabled, skipping student index")
			return nil
		}
		if err := index.EnsureIndex(ctx); err != nil {
			return err
		}
		a.ZapLog.Info("Student index ready", zap.String("index", a.Config.Search.StudentIndex))
	}
	return nil
}
