// ABOUTME: SQLite-backed persistent store for the case and gold-standard corpora
// ABOUTME: Handles XDG directories, embedding blobs, and extraction JSON columns
package storage

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/notewell/engine/internal/models"
)

// Scope names for the two corpora. Scopes are tenant boundaries in the
// index; the store keeps them in one table with a scope column.
const (
	ScopeCases = "cases"
	ScopeGold  = "gold"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	scope TEXT NOT NULL,
	text TEXT NOT NULL,
	embedding BLOB,
	extraction TEXT,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cases_scope ON cases(scope);
CREATE INDEX IF NOT EXISTS idx_cases_created ON cases(scope, created_at);
`

// Store manages persistent case data
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultDataDir returns the XDG-compliant data directory.
// Respects XDG_DATA_HOME environment variable override for testing.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "notewell")
}

// Open opens or creates the store at the given path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// OpenDefault opens the store at the default XDG path
func OpenDefault() (*Store, error) {
	return Open(filepath.Join(DefaultDataDir(), "cases.db"))
}

// OpenInMemory creates an in-memory store (for testing)
func OpenInMemory() (*Store, error) {
	return Open(":memory:")
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SaveCase persists a case record. A missing ID is assigned a fresh UUID.
// Returns the stored record with its final ID.
func (s *Store) SaveCase(record models.CaseRecord) (models.CaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Scope == "" {
		record.Scope = ScopeCases
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var extractionJSON []byte
	if record.Extraction != nil {
		var err error
		extractionJSON, err = json.Marshal(record.Extraction)
		if err != nil {
			return record, fmt.Errorf("failed to marshal extraction for case %s: %w", record.ID, err)
		}
	}

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO cases (id, scope, text, embedding, extraction, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Scope, record.Text,
		encodeVector(record.Embedding), string(extractionJSON),
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return record, fmt.Errorf("failed to save case %s: %w", record.ID, err)
	}
	return record, nil
}

// GetCase loads one case by id
func (s *Store) GetCase(id string) (*models.CaseRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, scope, text, embedding, extraction, created_at FROM cases WHERE id = ?`, id)
	record, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("case %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load case %s: %w", id, err)
	}
	return record, nil
}

// ListCases loads every case in a scope, oldest first
func (s *Store) ListCases(scope string) ([]models.CaseRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, scope, text, embedding, extraction, created_at FROM cases WHERE scope = ? ORDER BY created_at ASC`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases in scope %s: %w", scope, err)
	}
	defer rows.Close()

	var records []models.CaseRecord
	for rows.Next() {
		record, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case row: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// DeleteCase removes one case by id
func (s *Store) DeleteCase(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete case %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("case %s not found", id)
	}
	return nil
}

// CountCases returns the number of cases in a scope
func (s *Store) CountCases(scope string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM cases WHERE scope = ?`, scope).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cases in scope %s: %w", scope, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(row rowScanner) (*models.CaseRecord, error) {
	var (
		record         models.CaseRecord
		embedding      []byte
		extractionJSON sql.NullString
		createdAt      string
	)
	if err := row.Scan(&record.ID, &record.Scope, &record.Text, &embedding, &extractionJSON, &createdAt); err != nil {
		return nil, err
	}

	record.Embedding = decodeVector(embedding)
	if extractionJSON.Valid && extractionJSON.String != "" {
		var extraction models.Extraction
		if err := json.Unmarshal([]byte(extractionJSON.String), &extraction); err != nil {
			return nil, fmt.Errorf("corrupt extraction JSON: %w", err)
		}
		record.Extraction = &extraction
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	record.CreatedAt = t
	return &record, nil
}

// encodeVector packs a float64 slice into a little-endian blob
func encodeVector(v []float64) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float64 {
	if len(buf) < 8 {
		return nil
	}
	v := make([]float64, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return v
}
