package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Result resultado de aplicar migraciones.
type Result struct {
	Applied  []int
	Skipped  []int
	Duration time.Duration
}

// migrationFilePattern patrón para nombres de archivo de migración.
var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// Parse lee y parsea las migraciones del FS embebido, ordenadas por versión.
func Parse() ([]Migration, error) {
	var migrations []Migration

	err := fs.WalkDir(FS, Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := migrationFilePattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil // Ignorar archivos que no coinciden
		}

		version, _ := strconv.Atoi(matches[1])
		content, err := FS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    matches[2],
			SQL:     string(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Run aplica las migraciones pendientes. Lleva registro de versiones
// aplicadas en schema_migrations; re-ejecutar es idempotente.
func Run(ctx context.Context, pool *pgxpool.Pool) (*Result, error) {
	start := time.Now()
	res := &Result{}

	migrations, err := Parse()
	if err != nil {
		return nil, fmt.Errorf("parse migrations: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied := map[int]bool{}
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("reading applied versions: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return nil, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			res.Skipped = append(res.Skipped, m.Version)
			continue
		}
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("migration %04d_%s: %w", m.Version, m.Name, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			m.Version, m.Name,
		); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("recording migration %04d: %w", m.Version, err)
		}
		res.Applied = append(res.Applied, m.Version)
	}

	res.Duration = time.Since(start)
	return res, nil
}
