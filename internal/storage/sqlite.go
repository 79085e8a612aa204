package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/topstack/topstack/internal/config"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

// SQLiteSlot stores values in a single-table SQLite database.
type SQLiteSlot struct {
	pool    *sqlitex.Pool
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

// OpenSQLiteSlot opens (creating if needed) the database at path. The
// parent directory must exist.
func OpenSQLiteSlot(path string, logger *slog.Logger) (*SQLiteSlot, error) {
	logger = config.Discard(logger)
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: 2,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range sqlitePragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("%s: %w", pragma, err)
				}
			}
			return sqlitex.ExecuteScript(conn, kvSchema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	logger.Debug("sqlite slot opened", "path", path)
	return &SQLiteSlot{pool: pool, path: path, timeout: 5 * time.Second, logger: logger}, nil
}

func (s *SQLiteSlot) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var value []byte
	found := false
	err = sqlitex.Execute(conn, `SELECT value FROM kv WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (s *SQLiteSlot) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("storage: take connection: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{key, value, time.Now().UnixMilli()},
		})
	if err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", s.path, err)
	}
	s.logger.Debug("sqlite slot closed", "path", s.path)
	return nil
}
