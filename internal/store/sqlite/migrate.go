package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its configuration in package globals.
var migrateMu sync.Mutex

func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{logger: logger})

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output to slog at debug level.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrate")
	}
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrate")
	}
	panic(fmt.Sprintf(format, v...))
}
