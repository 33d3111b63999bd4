// Package inventory persists decoded transceivers in SQLite.
package inventory

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/metal-toolbox/sffinfo/internal/model"
	"github.com/metal-toolbox/sffinfo/pkg/sff"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

var (
	ErrOpen    = errors.New("inventory open error")
	ErrMigrate = errors.New("inventory migration error")
	ErrQuery   = errors.New("inventory query error")
)

const schema = `
CREATE TABLE IF NOT EXISTS transceivers (
	id TEXT PRIMARY KEY,
	port TEXT NOT NULL,
	source TEXT NOT NULL,
	scanned_at INTEGER NOT NULL, -- unix nanoseconds
	sfp_type TEXT NOT NULL,
	module_type TEXT NOT NULL,
	media_type TEXT NOT NULL,
	caps INTEGER NOT NULL,
	vendor TEXT,
	model TEXT,
	serial TEXT,
	revision TEXT,
	length INTEGER NOT NULL,
	supported BOOLEAN NOT NULL,
	idprom BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transceivers_port_scanned ON transceivers(port, scanned_at);
CREATE INDEX IF NOT EXISTS idx_transceivers_serial ON transceivers(serial);
`

// Record is one stored scan of a port.
// nolint:govet // prefer to keep field ordering as is
type Record struct {
	ID         uuid.UUID
	Port       string
	Source     model.SourceKind
	ScannedAt  time.Time
	SFPType    string
	ModuleType string
	MediaType  string
	Caps       sff.ModuleCaps
	Vendor     string
	Model      string
	Serial     string
	Revision   string
	Length     int
	Supported  bool
	Idprom     []byte
}

// DB wraps the SQL database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the inventory at path and migrates it.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(ErrOpen, err.Error())
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(ErrOpen, err.Error())
	}

	// a single writer avoids SQLITE_BUSY under concurrent scans
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(ErrOpen, err.Error())
	}

	db := &DB{conn: conn, path: path}

	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Migrate creates or updates the database schema.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return errors.Wrap(ErrMigrate, err.Error())
	}

	return nil
}

// Save stores a decoded transceiver.
func (db *DB) Save(ctx context.Context, t *model.Transceiver) error {
	info := t.Info
	if info == nil {
		info = sff.Invalidate()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO transceivers
		 (id, port, source, scanned_at, sfp_type, module_type, media_type, caps,
		  vendor, model, serial, revision, length, supported, idprom)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Port, string(t.Source), t.ScannedAt.UnixNano(),
		info.SFPType.String(), info.ModuleType.String(), info.MediaType.String(), int(info.Caps),
		info.Vendor, info.Model, info.Serial, info.Revision, info.Length, info.Supported,
		info.Eeprom[:],
	)
	if err != nil {
		return errors.Wrap(ErrQuery, "failed to save transceiver: "+err.Error())
	}

	return nil
}

const selectColumns = `id, port, source, scanned_at, sfp_type, module_type, media_type, caps,
	vendor, model, serial, revision, length, supported, idprom`

// Latest returns the most recent record of every port, ordered by port. Of
// two scans with the same timestamp the one inserted last wins.
func (db *DB) Latest(ctx context.Context) ([]*Record, error) {
	return db.query(ctx,
		`SELECT `+selectColumns+` FROM (
			SELECT `+selectColumns+`,
				ROW_NUMBER() OVER (PARTITION BY port ORDER BY scanned_at DESC, rowid DESC) AS rn
			FROM transceivers
		 ) WHERE rn = 1
		 ORDER BY port`,
	)
}

// History returns every record of port, newest first.
func (db *DB) History(ctx context.Context, port string) ([]*Record, error) {
	return db.query(ctx,
		`SELECT `+selectColumns+` FROM transceivers WHERE port = ? ORDER BY scanned_at DESC, rowid DESC`,
		port,
	)
}

func (db *DB) query(ctx context.Context, query string, args ...any) ([]*Record, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(ErrQuery, err.Error())
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		var (
			r         Record
			id        string
			source    string
			scannedAt int64
			caps      int
		)

		if err := rows.Scan(
			&id, &r.Port, &source, &scannedAt, &r.SFPType, &r.ModuleType, &r.MediaType, &caps,
			&r.Vendor, &r.Model, &r.Serial, &r.Revision, &r.Length, &r.Supported, &r.Idprom,
		); err != nil {
			return nil, errors.Wrap(ErrQuery, err.Error())
		}

		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrap(ErrQuery, err.Error())
		}

		r.Source = model.SourceKind(source)
		r.ScannedAt = time.Unix(0, scannedAt).UTC()
		r.Caps = sff.ModuleCaps(caps)

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(ErrQuery, err.Error())
	}

	return records, nil
}

// Info decodes the stored image again.
func (r *Record) Info() (*sff.Info, error) {
	return sff.NewInfo(r.Idprom)
}
