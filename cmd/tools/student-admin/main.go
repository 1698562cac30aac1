// cmd/tools/student-admin/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"placement-tracker/internal/admin"
	"placement-tracker/internal/app"
	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/logger"
)

func main() {
	deleteStudentCmd := flag.NewFlagSet("delete-student", flag.ExitOnError)
	reindexCmd := flag.NewFlagSet("reindex-student", flag.ExitOnError)
	deleteScoreTypeCmd := flag.NewFlagSet("delete-score-type", flag.ExitOnError)
	searchCmd := flag.NewFlagSet("search", flag.ExitOnError)

	var configPaths []*string
	for _, fs := range []*flag.FlagSet{deleteStudentCmd, reindexCmd, deleteScoreTypeCmd, searchCmd} {
		configPaths = append(configPaths, fs.String("config", "", "Path to config file (defaults to configs/config.yaml)"))
	}
	deleteID := deleteStudentCmd.String("id", "", "Student user_id")
	reindexID := reindexCmd.String("id", "", "Student user_id")
	scoreTypeKey := deleteScoreTypeCmd.String("key", "", "Score type key")
	query := searchCmd.String("q", "", "Text to match against name, email and college")
	limit := searchCmd.Int("limit", 10, "Maximum number of hits")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var (
		fs   *flag.FlagSet
		opts app.Options
	)
	switch os.Args[1] {
	case "delete-student":
		fs, opts = deleteStudentCmd, app.Options{Elasticsearch: true}
	case "reindex-student":
		fs, opts = reindexCmd, app.Options{Elasticsearch: true}
	case "delete-score-type":
		fs, opts = deleteScoreTypeCmd, app.Options{Redis: true}
	case "search":
		fs, opts = searchCmd, app.Options{Elasticsearch: true}
	default:
		help()
		return
	}
	fs.Parse(os.Args[2:])

	bootLog := logger.New("info", "console")
	defer bootLog.Sync()

	var configPath string
	for _, p := range configPaths {
		if *p != "" {
			configPath = *p
		}
	}
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, "student-admin", opts)
	if err != nil {
		bootLog.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	// nil pointers must not become non-nil interfaces
	var index admin.Index
	if si := a.StudentIndex(); si != nil {
		index = si
	}
	var cache admin.Invalidator
	if opts.Redis {
		cache = a.ScoreTypes()
	}
	svc := admin.New(a.Store, index, cache, a.Log)

	switch os.Args[1] {
	case "delete-student":
		err = withStudentID(*deleteID, func(id uuid.UUID) error { return svc.DeleteStudent(ctx, id) })
	case "reindex-student":
		err = withStudentID(*reindexID, func(id uuid.UUID) error { return svc.ReindexStudent(ctx, id) })
	case "delete-score-type":
		if *scoreTypeKey == "" {
			err = fmt.Errorf("-key is required")
		} else {
			err = svc.DeleteScoreType(ctx, *scoreTypeKey)
		}
	case "search":
		hits, searchErr := svc.Search(ctx, *query, *limit)
		if searchErr == nil {
			out, _ := json.MarshalIndent(hits, "", "  ")
			fmt.Println(string(out))
		}
		err = searchErr
	}

	if err != nil {
		a.ZapLog.Error(os.Args[1]+" failed", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
}

func withStudentID(raw string, fn func(uuid.UUID) error) error {
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid -id %q: %w", raw, err)
	}
	return fn(id)
}

func help() {
	fmt.Print(`
Usage: student-admin <command> [flags]

Commands:
  delete-student     Delete a student with its assessments and interviews, and drop its search document
  reindex-student    Rewrite a student's search document from the database
  delete-score-type  Delete an unused score type and evict it from the cache
  search             Search students by name, email or college
  help               Show this help message

Examples:
  student-admin delete-student -id 6f1c...
  student-admin delete-score-type -key verbal
  student-admin search -q "iit madras" -limit 5
`)
}
