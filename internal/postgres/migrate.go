package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	ierr "github.com/naasdev/naas/internal/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migration is one embedded schema change
type Migration struct {
	Version string
	SQL     string
}

// LoadMigrations returns the embedded migrations ordered by version
func LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(migrationFS, "migrations/"+entry.Name())
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(entry.Name(), ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations. Each migration runs in its own transaction.
// It returns the versions applied by this call.
func (db *DB) Migrate(ctx context.Context, dryRun bool) ([]string, error) {
	migrations, err := LoadMigrations()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to load migrations").
			Mark(ierr.ErrSystem)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, WrapError(err, "schema_migrations")
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return nil, WrapError(err, "schema_migrations")
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	var versions []string
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}

		if dryRun {
			db.logger.Infow("pending migration", "version", m.Version)
			versions = append(versions, m.Version)
			continue
		}

		err := db.WithTx(ctx, func(ctx context.Context) error {
			q := db.GetQuerier(ctx)
			if _, err := q.ExecContext(ctx, m.SQL); err != nil {
				return err
			}
			_, err := q.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version)
			return err
		})
		if err != nil {
			return versions, ierr.WithError(err).
				WithHintf("Migration %s failed", m.Version).
				Mark(ierr.ErrDatabase)
		}

		db.logger.Infow("applied migration", "version", m.Version)
		versions = append(versions, m.Version)
	}

	return versions, nil
}
