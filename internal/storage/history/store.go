package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded mask save.
type Entry struct {
	ID         string    `json:"id"`
	PuppetID   string    `json:"puppetId"`
	ObjectPath string    `json:"objectPath"`
	SizeBytes  int64     `json:"sizeBytes"`
	SHA256     string    `json:"sha256"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists mask save records.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a save and returns it with its generated id and timestamp.
func (s *Store) Record(ctx context.Context, puppetID, objectPath string, sizeBytes int64, sha string) (Entry, error) {
	entry := Entry{
		ID:         uuid.NewString(),
		PuppetID:   puppetID,
		ObjectPath: objectPath,
		SizeBytes:  sizeBytes,
		SHA256:     sha,
		CreatedAt:  s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mask_saves (id, puppet_id, object_path, size_bytes, sha256, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.PuppetID,
		entry.ObjectPath,
		entry.SizeBytes,
		entry.SHA256,
		entry.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert mask save: %w", err)
	}
	return entry, nil
}

// Latest returns the most recent save for puppetID.
func (s *Store) Latest(ctx context.Context, puppetID string) (Entry, bool, error) {
	entries, err := s.List(ctx, puppetID, 1)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return entries[0], true, nil
}

// List returns saves for puppetID, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, puppetID string, limit int) ([]Entry, error) {
	query := `SELECT id, puppet_id, object_path, size_bytes, sha256, created_at
        FROM mask_saves WHERE puppet_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []any{puppetID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mask saves: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			created string
		)
		if err := rows.Scan(&entry.ID, &entry.PuppetID, &entry.ObjectPath, &entry.SizeBytes, &entry.SHA256, &created); err != nil {
			return nil, fmt.Errorf("scan mask save: %w", err)
		}
		entry.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mask saves: %w", err)
	}
	return entries, nil
}
