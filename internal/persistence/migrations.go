package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const createMigrationsTable = `
    CREATE TABLE IF NOT EXISTS schema_migrations (
        name       TEXT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`

// RunMigrations applies the *.sql files of dir in lexical order. Each file runs once, inside its
// own transaction, and is recorded in schema_migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	filenames, err := migrationFiles(dir)
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, name := range filenames {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		ran, err := applyMigration(ctx, pool, name, string(content))
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if ran {
			applied++
			logger.Info("applied migration", zap.String("file", name))
		}
	}

	logger.Info("migrations up to date", zap.Int("applied", applied), zap.Int("total", len(filenames)))
	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, name, sql string) (bool, error) {
	ran := false
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, sql); err != nil {
			return err
		}
		ran = true
		return nil
	})
	return ran, err
}

// migrationFiles lists the .sql files of dir sorted by name.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)
	return filenames, nil
}
