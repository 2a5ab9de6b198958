// Package migrations carries the schema and applies it in filename order.
package migrations

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"hotel-booking/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// Serializes concurrent runners, e.g. two deploy jobs starting together.
const advisoryLockID int64 = 7264153901

const ensureTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    name        TEXT PRIMARY KEY,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Apply runs every embedded migration that schema_migrations has not recorded.
// Each file runs in its own transaction together with its record, so a failed
// file leaves nothing half applied.
func Apply(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	names, err := pending(files)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "failed to acquire migration connection")
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockID); err != nil {
		return nil, errs.Wrap(err, "failed to acquire migration lock")
	}
	defer func() {
		_, _ = conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, advisoryLockID)
	}()

	if _, err := conn.Exec(ctx, ensureTableSQL); err != nil {
		return nil, errs.Wrap(err, "failed to ensure schema_migrations")
	}

	var applied []string
	for _, name := range names {
		sql, err := fs.ReadFile(files, name)
		if err != nil {
			return applied, errs.Wrapf(err, "failed to read migration %s", name)
		}
		ok, err := applyOne(ctx, conn.Conn(), name, string(sql))
		if err != nil {
			return applied, err
		}
		if ok {
			applied = append(applied, name)
		}
	}
	return applied, nil
}

func applyOne(ctx context.Context, conn *pgx.Conn, name, sql string) (bool, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, errs.Wrapf(err, "failed to begin migration %s", name)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	var done bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&done); err != nil {
		return false, errs.Wrapf(err, "failed to check migration %s", name)
	}
	if done {
		return false, nil
	}
	if strings.TrimSpace(sql) != "" {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return false, errs.Wrapf(err, "failed to apply migration %s", name)
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return false, errs.Wrapf(err, "failed to record migration %s", name)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, errs.Wrapf(err, "failed to commit migration %s", name)
	}
	return true, nil
}

// pending lists the .sql files at the root of fsys in lexical order.
func pending(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, errs.Wrap(err, "failed to list migrations")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
