package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/delta10/wpsd/internal/wps"
)

var ErrNotFound = errors.New("not found")

// StoredOutput is an output kept for retrieval by reference.
type StoredOutput struct {
	Format  wps.Format
	Payload []byte
}

// Store keeps encoded execute responses and reference outputs beyond the
// lifetime of the in-memory job.
type Store interface {
	SaveResponse(ctx context.Context, job, process, state string, document []byte, at time.Time) error
	LoadResponse(ctx context.Context, job string) ([]byte, error)
	SaveOutput(ctx context.Context, job, output string, out StoredOutput) error
	LoadOutput(ctx context.Context, job, output string) (StoredOutput, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	job TEXT PRIMARY KEY,
	process TEXT NOT NULL,
	state TEXT NOT NULL,
	document BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS outputs (
	job TEXT NOT NULL,
	output TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	encoding TEXT NOT NULL DEFAULT '',
	format_schema TEXT NOT NULL DEFAULT '',
	payload BLOB NOT NULL,
	PRIMARY KEY (job, output)
);
`

// SQLStore is a Store on a SQLite database.
type SQLStore struct {
	DB *sql.DB
}

// OpenSQLStore opens or creates the database at path.
func OpenSQLStore(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLStore{DB: conn}, nil
}

func (s *SQLStore) Close() error { return s.DB.Close() }

func (s *SQLStore) SaveResponse(ctx context.Context, job, process, state string, document []byte, at time.Time) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO responses(job, process, state, document, updated_at) VALUES (?,?,?,?,?)
		ON CONFLICT(job) DO UPDATE SET state=excluded.state, document=excluded.document, updated_at=excluded.updated_at`,
		job, process, state, document, at.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLStore) LoadResponse(ctx context.Context, job string) ([]byte, error) {
	var document []byte
	err := s.DB.QueryRowContext(ctx, `SELECT document FROM responses WHERE job=?`, job).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return document, err
}

func (s *SQLStore) SaveOutput(ctx context.Context, job, output string, out StoredOutput) error {
	if out.Payload == nil {
		out.Payload = []byte{}
	}
	_, err := s.DB.ExecContext(ctx, `INSERT OR REPLACE INTO outputs(job, output, mime_type, encoding, format_schema, payload) VALUES (?,?,?,?,?,?)`,
		job, output, out.Format.MimeType, out.Format.Encoding, out.Format.Schema, out.Payload)
	return err
}

func (s *SQLStore) LoadOutput(ctx context.Context, job, output string) (StoredOutput, error) {
	var out StoredOutput
	err := s.DB.QueryRowContext(ctx, `SELECT mime_type, encoding, format_schema, payload FROM outputs WHERE job=? AND output=?`, job, output).
		Scan(&out.Format.MimeType, &out.Format.Encoding, &out.Format.Schema, &out.Payload)
	if err == sql.ErrNoRows {
		return StoredOutput{}, ErrNotFound
	}
	return out, err
}
