// Package migrations embeds the schema and applies it with goose.
package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var files embed.FS

func init() {
	goose.SetBaseFS(files)
	if err := goose.SetDialect("postgres"); err != nil {
		panic(err)
	}
}

// Up applies all pending migrations.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	return run(ctx, pool, "up")
}

// Run executes a goose command ("up", "down", "status", "version", ...).
func Run(ctx context.Context, pool *pgxpool.Pool, command string) error {
	return run(ctx, pool, command)
}

func run(ctx context.Context, pool *pgxpool.Pool, command string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
