package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending migration in fsys (its root holds the .sql
// files) to the database behind pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, table string, log *slog.Logger) error {
	// Shares the pool's connections; closing it would close the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{log: log})
	if table != "" {
		goose.SetTableName(table)
	}
	if err := goose.SetDialect(string(goose.DialectPostgres)); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Join(ErrMigrate, err)
	}
	return nil
}

type gooseLogger struct{ log *slog.Logger }

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "migrator"))
}

// Fatalf logs instead of exiting; goose returns the error to Migrate anyway.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "migrator"))
}
