// Package audit journals per-file scan outcomes in a DuckDB file so
// recent verdicts stay queryable across requests. Journaling is
// best-effort by contract: callers log failures and never fail the
// scan request on them.
package audit

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"

	"github.com/marcboeker/go-duckdb"
	"github.com/rntrp/reefspect/internal/models"
)

// Record is one journaled per-file scan outcome. Pointer fields mirror
// the report's null semantics on both JSON and MessagePack encodings.
type Record struct {
	ID          int64   `json:"id" msgpack:"id"`
	Name        *string `json:"name" msgpack:"name"`
	Size        int64   `json:"size" msgpack:"size"`
	CRC32       string  `json:"crc32" msgpack:"crc32"`
	MD5         string  `json:"md5" msgpack:"md5"`
	SHA256      string  `json:"sha256" msgpack:"sha256"`
	ContentType *string `json:"contentType" msgpack:"contentType"`
	Result      string  `json:"result" msgpack:"result"`
	Signature   *string `json:"signature" msgpack:"signature"`
	DateScanned string  `json:"dateScanned" msgpack:"dateScanned"`
}

// Store is the DuckDB-backed scan journal.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (or creates) the journal database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating journal connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if _, err := db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS scans_seq;
		CREATE TABLE IF NOT EXISTS scans (
			id           BIGINT PRIMARY KEY,
			name         VARCHAR,
			size         BIGINT NOT NULL,
			crc32        VARCHAR NOT NULL,
			md5          VARCHAR NOT NULL,
			sha256       VARCHAR NOT NULL,
			content_type VARCHAR,
			result       VARCHAR NOT NULL,
			signature    VARCHAR,
			scanned_at   VARCHAR NOT NULL
		)
	`); err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating scans table: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Record appends one journal row per file result, in report order.
func (s *Store) Record(ctx context.Context, results []models.FileResult) error {
	for _, r := range results {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO scans
				(id, name, size, crc32, md5, sha256, content_type, result, signature, scanned_at)
			VALUES (nextval('scans_seq'), ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Name, r.Size, r.CRC32, r.MD5, r.SHA256,
			r.ContentType, r.Result, r.Signature, r.DateScanned,
		); err != nil {
			return fmt.Errorf("inserting scan record: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit journal rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, size, crc32, md5, sha256, content_type, result, signature, scanned_at
		FROM scans ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scan records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var name, contentType, signature sql.NullString
		if err := rows.Scan(
			&rec.ID, &name, &rec.Size, &rec.CRC32, &rec.MD5, &rec.SHA256,
			&contentType, &rec.Result, &signature, &rec.DateScanned,
		); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		if name.Valid {
			rec.Name = &name.String
		}
		if contentType.Valid {
			rec.ContentType = &contentType.String
		}
		if signature.Valid {
			rec.Signature = &signature.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close shuts down the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
