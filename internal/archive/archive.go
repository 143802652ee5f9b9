// Package archive keeps a local SQLite history of analysis summaries keyed
// by document fingerprint.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ZanMander/Forensic-linguistics/internal/analysis"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("archive record not found")

// MemoryPath opens a private in-memory archive.
const MemoryPath = ":memory:"

// Record is one archived analysis.
type Record struct {
	ID              string          `json:"id"`
	Fingerprint     string          `json:"fingerprint"`
	FileName        string          `json:"file_name"`
	AnalyzedAt      time.Time       `json:"analyzed_at"`
	CopyPasteScore  float64         `json:"copy_paste_score"`
	Confidence      float64         `json:"confidence"`
	Detected        bool            `json:"detected"`
	CompletionScore float64         `json:"completion_score"`
	SessionCount    int             `json:"session_count"`
	RSIDCount       int             `json:"rsid_count"`
	Degraded        bool            `json:"degraded"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

// FromResult summarizes a result for archiving. The run id becomes the
// record id and the full result is kept as the payload.
func FromResult(res *analysis.Result) (*Record, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	rsids := 0
	if res.RSID != nil {
		rsids = len(res.RSID.Order)
	}
	return &Record{
		ID:              res.RunID,
		Fingerprint:     res.Fingerprint,
		FileName:        res.FileName,
		AnalyzedAt:      res.AnalyzedAt,
		CopyPasteScore:  res.Typing.CopyPasteScore,
		Confidence:      res.Misconduct.Confidence,
		Detected:        res.Misconduct.Detected,
		CompletionScore: res.Completeness.Score,
		SessionCount:    res.Sessions.Count,
		RSIDCount:       rsids,
		Degraded:        res.Degraded,
		Payload:         payload,
	}, nil
}

// Result decodes the archived payload.
func (r *Record) Result() (*analysis.Result, error) {
	if len(r.Payload) == 0 {
		return nil, fmt.Errorf("record %s has no payload", r.ID)
	}
	var res analysis.Result
	if err := json.Unmarshal(r.Payload, &res); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &res, nil
}

// Store is the SQLite report archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive at path and migrates it to the latest
// schema. MemoryPath gives a throwaway archive.
func Open(path string) (*Store, error) {
	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
		dsn = path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if path == MemoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SchemaVersion returns the applied migration version.
func (s *Store) SchemaVersion() (uint, error) {
	version, dirty, err := schemaVersion(s.db)
	if err != nil {
		return 0, fmt.Errorf("schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("archive schema is dirty at version %d", version)
	}
	return version, nil
}

// Save inserts or replaces a record.
func (s *Store) Save(ctx context.Context, r *Record) error {
	if r.ID == "" {
		return errors.New("record id is required")
	}
	if r.Fingerprint == "" {
		return errors.New("record fingerprint is required")
	}
	payload := r.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analyses (id, fingerprint, file_name, analyzed_at_ns, copy_paste_score, confidence,
			detected, completion_score, session_count, rsid_count, degraded, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Fingerprint, r.FileName, r.AnalyzedAt.UnixNano(), r.CopyPasteScore, r.Confidence,
		boolToInt(r.Detected), r.CompletionScore, r.SessionCount, r.RSIDCount, boolToInt(r.Degraded), string(payload),
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// SaveResult archives an analysis result.
func (s *Store) SaveResult(ctx context.Context, res *analysis.Result) (*Record, error) {
	rec, err := FromResult(res)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

const selectColumns = `SELECT id, fingerprint, file_name, analyzed_at_ns, copy_paste_score, confidence,
	detected, completion_score, session_count, rsid_count, degraded, payload FROM analyses`

// Get retrieves a record by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

// ListByFingerprint returns every record for a document, oldest first.
func (s *Store) ListByFingerprint(ctx context.Context, fingerprint string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE fingerprint = ? ORDER BY analyzed_at_ns ASC, id ASC`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("query records by fingerprint: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` ORDER BY analyzed_at_ns DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var r Record
	var analyzedNs int64
	var detected, degraded int
	var payload string

	if err := row.Scan(&r.ID, &r.Fingerprint, &r.FileName, &analyzedNs, &r.CopyPasteScore, &r.Confidence,
		&detected, &r.CompletionScore, &r.SessionCount, &r.RSIDCount, &degraded, &payload); err != nil {
		return nil, err
	}

	r.AnalyzedAt = time.Unix(0, analyzedNs).UTC()
	r.Detected = detected != 0
	r.Degraded = degraded != 0
	r.Payload = json.RawMessage(payload)
	return &r, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
