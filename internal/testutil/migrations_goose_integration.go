//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/jackc/pgx/v5/stdlib" // драйвер database/sql "pgx"
	"github.com/pressly/goose/v3"
)

// migrationsDir - каталог migrations/ в корне модуля, от расположения этого файла.
func migrationsDir() (string, error) {
	_, thisFile, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return "", fmt.Errorf("migrations dir not found: %q", dir)
	}
	return filepath.Clean(dir), nil
}

// ApplyMigrationsGoose накатывает схему заказов (все миграции из migrations/)
// и отказывает, если после этого таблиц заказа нет.
func ApplyMigrationsGoose(ctx context.Context, dsn string) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		tcLogger.Printf("migration %d applied in %s", r.Source.Version, r.Duration)
	}

	for _, table := range []string{"deliveries", "payments", "items", "orders", "items_to_order"} {
		var exists bool
		if err := db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
			return fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("table %s is missing after migrations", table)
		}
	}
	return nil
}
