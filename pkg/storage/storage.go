// Package storage keeps diary entries and search settings in a single sqlite
// database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/db"
	"github.com/rubiojr/pocketdiary/pkg/log"
)

// ErrNotFound is returned when no entry exists for a day.
var ErrNotFound = errors.New("entry not found")

type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open opens (creating if needed) the database at path and brings its schema
// up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -16000", // 16MB cache
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.InitializeDatabase(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Store{db: conn, path: path, logger: log.ForService("storage")}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying connection, for migrations and maintenance.
func (s *Store) DB() *sql.DB {
	return s.db
}

const entryColumns = "id, date, title, content, background_color, image, image_position_top"

// FetchAllEntries returns every entry, oldest first.
func (s *Store) FetchAllEntries(ctx context.Context) ([]*core.Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY day ASC")
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := []*core.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	s.logger.Debugf("loaded %d entries", len(entries))
	return entries, nil
}

// GetEntry returns the entry for day, or ErrNotFound.
func (s *Store) GetEntry(ctx context.Context, day time.Time) (*core.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE day = ?", day.Format(core.DayLayout))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", day.Format(core.DayLayout), ErrNotFound)
	}
	return e, err
}

// PutEntry inserts e or replaces the entry already stored for its day.
func (s *Store) PutEntry(ctx context.Context, e *core.Entry) error {
	if e == nil {
		return errors.New("nil entry")
	}
	id := e.ID
	if id == "" {
		id = core.EntryID(e.Date)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (day, `+entryColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(day) DO UPDATE SET
			date = excluded.date,
			title = excluded.title,
			content = excluded.content,
			background_color = excluded.background_color,
			image = excluded.image,
			image_position_top = excluded.image_position_top,
			updated_at = CURRENT_TIMESTAMP
	`,
		e.Key(),
		id,
		e.Date.Format(time.RFC3339Nano),
		e.Title,
		e.Content,
		e.BackgroundColor,
		e.Image,
		e.ImagePositionTop,
	)
	if err != nil {
		return fmt.Errorf("storing entry %s: %w", e.Key(), err)
	}
	return nil
}

// DeleteEntry removes the entry for day, or returns ErrNotFound.
func (s *Store) DeleteEntry(ctx context.Context, day time.Time) error {
	key := day.Format(core.DayLayout)
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE day = ?", key)
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return nil
}

func (s *Store) CountEntries(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Get reads a settings value.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes a settings value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// WALCheckpoint flushes the write-ahead log into the main database file.
func (s *Store) WALCheckpoint(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*core.Entry, error) {
	var (
		e       core.Entry
		rawDate string
		image   []byte
	)
	if err := row.Scan(&e.ID, &rawDate, &e.Title, &e.Content, &e.BackgroundColor, &image, &e.ImagePositionTop); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning entry: %w", err)
	}

	date, err := time.Parse(time.RFC3339Nano, rawDate)
	if err != nil {
		return nil, fmt.Errorf("parsing date of entry %s: %w", e.ID, err)
	}
	e.Date = date
	if len(image) > 0 {
		e.Image = image
	}
	return &e, nil
}
