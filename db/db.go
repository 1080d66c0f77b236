// Package db is the relational store for saved fights and the strike-type
// taxonomy. It speaks SQLite (modernc, the default) and PostgreSQL (lib/pq).
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/user/tagging-fight-cli/pkg/logger"
)

// Dialect selects the SQL flavour of the connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// ParseDialect validates a db_driver value. Empty means SQLite.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case "", SQLite:
		return SQLite, nil
	case Postgres, "postgresql":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unknown database driver %q: must be sqlite or postgres", s)
	}
}

// createTables returns the schema for the dialect.
func (d Dialect) createTables() string {
	if d == Postgres {
		return createTablesPostgres
	}
	return createTablesSQLite
}

// Rebind rewrites ? placeholders into $n for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DefaultPath returns ~/.local/share/tagging-fight-cli/data.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "tagging-fight-cli", "data.db"), nil
}

// Open connects to the database, creating the SQLite file and its parent
// directories when needed, and brings the schema up to date.
func Open(driver, dsn string, log *zap.Logger) (*Store, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		if dsn == "" {
			if dsn, err = DefaultPath(); err != nil {
				return nil, err
			}
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	} else if dsn == "" {
		return nil, fmt.Errorf("postgres needs a db_dsn")
	}

	conn, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		// One writer; avoids SQLITE_BUSY between the pool's connections.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	if err := runMigrations(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}

	log = logger.OrNop(log)
	log.Debug("database ready", zap.String("driver", string(dialect)))
	return NewStore(conn, dialect, log), nil
}
