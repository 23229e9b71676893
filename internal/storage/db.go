// Package storage is the async, single-writer persistence layer: a
// WAL-mode SQLite database fed by a bounded queue and drained by one
// batching writer task. Everything else in the pipeline only ever
// touches the queue; the *sql.DB handle is owned exclusively by the
// writer.
package storage

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection used by the writer task.
type DB struct {
	db *sql.DB
}

// Open opens (creating if absent) a WAL-mode SQLite database at path
// and applies every migration idempotently. The DSN pragmas mirror
// what a high-throughput single-writer workload needs: WAL so readers
// never block on a commit, synchronous=NORMAL to bound fsync cost,
// and a busy timeout so a brief writer/reader collision doesn't
// surface as an error.
func Open(path string) (*DB, error) {
	dsn := path
	if !strings.Contains(path, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	if err := applyMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("storage: migrate %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("storage initialized")
	return &DB{db: sqlDB}, nil
}

// applyMigrations runs every migration's SQL in lexicographic order by
// name. Each statement is idempotent (IF NOT EXISTS), so this is safe
// to call on every startup regardless of prior state.
func applyMigrations(db *sql.DB) error {
	ordered := make([]migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].name < ordered[j].name })

	for _, m := range ordered {
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}

// Close closes the underlying connection. Only the writer task should
// call this, after its queue has fully drained.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks that the connection is reachable, for the health
// checker only; the writer task never calls this mid-batch.
func (d *DB) Ping() error {
	return d.db.Ping()
}
