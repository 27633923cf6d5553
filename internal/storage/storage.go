package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a sql.DB for the league history store.
type DB struct {
	conn *sql.DB
	log  logrus.FieldLogger
}

// Open opens (or creates) the SQLite database at the given path and applies the schema.
// A nil logger discards output.
func Open(path string, log logrus.FieldLogger) (*DB, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.WithField("path", path).Debug("database opened")
	return &DB{conn: conn, log: log}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
