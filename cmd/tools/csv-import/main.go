// cmd/tools/csv-import/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"placement-tracker/internal/app"
	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/importer"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to configs/config.yaml)")
	file := flag.String("file", "", "Path to the shortlisted candidates CSV")
	withIndex := flag.Bool("index", false, "Index imported students in Elasticsearch")
	flag.Parse()

	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	if *file == "" {
		fmt.Println("Error: -file is required.")
		flag.Usage()
		os.Exit(1)
	}

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

	f, err := os.Open(*file)
	if err != nil {
		bootLog.Fatal("cannot open CSV", zap.Error(err))
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, "csv-import", app.Options{Redis: true, Elasticsearch: *withIndex})
	if err != nil {
		bootLog.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	// a nil *StudentIndex must not become a non-nil Indexer
	var index importer.Indexer
	if *withIndex {
		if si := a.StudentIndex(); si != nil {
			if err := si.EnsureIndex(ctx); err != nil {
				a.ZapLog.Warn("student index unavailable, importing without it", zap.Error(err))
			} else {
				index = si
			}
		}
	}

	im := importer.New(a.Store, a.ScoreTypes(), index, cfg.Import, a.Log)
	summary, err := im.Import(ctx, f)
	if summary != nil {
		out, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(out))
	}
	if err != nil {
		a.ZapLog.Error("import aborted", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
	if summary.Failed > 0 {
		a.Close()
		os.Exit(2)
	}
}
