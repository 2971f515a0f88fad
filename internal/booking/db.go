// Package booking is the trade ledger: an append-only sqlite store that
// books accepted RFQs exactly once and keeps the pricing attestation each
// trade was executed against.
package booking

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the ledger connection. The ledger profile trades write speed for
// durability: WAL journaling with a full fsync on every commit, and no
// auto-vacuum because rows are never deleted.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (and if necessary creates) the ledger at path. "file:" URIs are
// passed through untouched so tests can run against in-memory databases.
func Open(path string) (*DB, error) {
	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("booking: resolve ledger path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("booking: create ledger directory: %w", err)
		}
		path = absPath
	}

	conn, err := sql.Open("sqlite", connectionString(path))
	if err != nil {
		return nil, fmt.Errorf("booking: open ledger: %w", err)
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("booking: ping ledger: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		return nil, err
	}
	return db, nil
}

func connectionString(path string) string {
	// "file:" URIs may already carry query parameters.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	connStr := path + sep + "_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(FULL)" // fsync after every write
	connStr += "&_pragma=auto_vacuum(NONE)" // append-only, never shrink
	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=wal_autocheckpoint(1000)"
	connStr += "&_pragma=cache_size(-64000)"
	return connStr
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS trades (
    rfq_id          TEXT PRIMARY KEY,
    trade_id        TEXT NOT NULL UNIQUE,
    uti             TEXT NOT NULL UNIQUE,
    client_lei      TEXT NOT NULL,
    product_id      TEXT NOT NULL,
    taxonomy_code   TEXT NOT NULL,
    price           TEXT NOT NULL,
    currency        TEXT NOT NULL,
    notional        TEXT NOT NULL,
    side            TEXT NOT NULL,
    attestation_id  TEXT NOT NULL,
    booked_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attestations (
    attestation_id  TEXT PRIMARY KEY,
    rfq_id          TEXT NOT NULL,
    model_name      TEXT NOT NULL,
    snapshot_id     TEXT NOT NULL,
    price           TEXT NOT NULL,
    currency        TEXT NOT NULL,
    confidence      REAL NOT NULL,
    generated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_client_lei ON trades(client_lei);
CREATE INDEX IF NOT EXISTS idx_attestations_rfq ON attestations(rfq_id);
`

func (db *DB) migrate() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("booking: begin schema transaction: %w", err)
	}
	if _, err := tx.Exec(ledgerSchema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("booking: apply ledger schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("booking: commit ledger schema: %w", err)
	}
	return nil
}

// Close closes the ledger connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying connection for the service layer.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// HealthCheck pings the ledger and runs an integrity check.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("booking: ledger ping failed: %w", err)
	}
	var result string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("booking: ledger integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("booking: ledger integrity check failed: %s", result)
	}
	return nil
}

// WALCheckpoint forces a WAL checkpoint to keep the log from growing without
// bound. TRUNCATE is the maintenance default.
func (db *DB) WALCheckpoint(mode string) error {
	if mode == "" {
		mode = "TRUNCATE"
	}
	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)); err != nil {
		return fmt.Errorf("booking: WAL checkpoint: %w", err)
	}
	return nil
}
