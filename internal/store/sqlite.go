// Package store implements engine.Store on top of SQLite.
//
// Live queries are push-based: every successful write wakes all watchers,
// which re-run their query and emit a fresh snapshot. Wake-ups are
// coalesced, so a burst of writes costs one re-query per watcher.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no contact has the requested id.
var ErrNotFound = errors.New(config.ErrContactNotFound)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT    NOT NULL,
	phone_number   TEXT    NOT NULL,
	is_favorite    INTEGER NOT NULL DEFAULT 0,
	"group"        TEXT    NOT NULL DEFAULT '',
	photo_uri      TEXT,
	last_called_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_contacts_name        ON contacts(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_contacts_last_called ON contacts(last_called_at DESC);
`

const (
	selectColumns = `SELECT id, name, phone_number, is_favorite, "group", photo_uri, last_called_at FROM contacts`
	orderByName   = ` ORDER BY name COLLATE NOCASE ASC, id ASC`
)

// SQLite is a contact store backed by a SQLite database file.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger

	mu       sync.Mutex
	watchers map[*watcher]struct{}

	fileWatcher *fsnotify.Watcher // nil for in-memory databases
	wg          sync.WaitGroup
}

type watcher struct {
	notify chan struct{}
}

// Open opens (creating if needed) the database at path and migrates it.
// Use MemoryPath for a throwaway database.
func Open(path string) (*SQLite, error) {
	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
		}
		dsn = path + config.SQLiteDSNOptions
	}

	db, err := sql.Open(config.SQLiteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBOpen, err)
	}

	if path == MemoryPath {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	} else {
		for _, p := range config.SQLitePragmas {
			if _, err := db.Exec(p); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("%s %q: %w", config.ErrDBPragma, p, err)
			}
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrDBMigrate, err)
	}

	s := &SQLite{
		db:       db,
		log:      slog.With(config.LogKeyComponent, config.CompStore),
		watchers: make(map[*watcher]struct{}),
	}
	if path != MemoryPath {
		if err := s.watchFile(path); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s.log.Info(config.MsgStoreOpened, config.LogKeyFile, path)
	return s, nil
}

// Close stops the file watcher and closes the database. Watchers must be
// cancelled first.
func (s *SQLite) Close() error {
	if s.fileWatcher != nil {
		_ = s.fileWatcher.Close()
	}
	s.wg.Wait()
	return s.db.Close()
}

// Watch implements engine.Store.
func (s *SQLite) Watch(ctx context.Context, q engine.Query) <-chan engine.Snapshot {
	out := make(chan engine.Snapshot)
	w := &watcher{notify: make(chan struct{}, config.ChannelBufferSize)}

	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer close(out)
		defer s.unsubscribe(w)

		for {
			contacts, err := s.query(ctx, q)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- engine.Snapshot{Contacts: contacts, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-w.notify:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *SQLite) unsubscribe(w *watcher) {
	s.mu.Lock()
	delete(s.watchers, w)
	s.mu.Unlock()
}

// changed wakes every watcher. A watcher already holding a pending wake-up
// is skipped: it will re-query anyway.
func (s *SQLite) changed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.watchers {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}

func (s *SQLite) query(ctx context.Context, q engine.Query) ([]engine.Contact, error) {
	var (
		stmt string
		args []any
	)
	switch q.Kind {
	case engine.KindAll:
		stmt = selectColumns + orderByName
	case engine.KindText:
		pattern := "%" + escapeLike(q.Text) + "%"
		stmt = selectColumns + ` WHERE name LIKE ? ESCAPE '\' OR phone_number LIKE ? ESCAPE '\'` + orderByName
		args = []any{pattern, pattern}
	case engine.KindFavorites:
		stmt = selectColumns + ` WHERE is_favorite = 1` + orderByName
	case engine.KindRecent:
		stmt = selectColumns + ` WHERE last_called_at IS NOT NULL ORDER BY last_called_at DESC, id DESC LIMIT ?`
		args = []any{q.Limit}
	default:
		return nil, fmt.Errorf("%s: %d", config.ErrQueryKind, q.Kind)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBQuery, err)
	}
	defer func() { _ = rows.Close() }()

	contacts := make([]engine.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBQuery, err)
	}
	return contacts, nil
}

// Get implements engine.Store.
func (s *SQLite) Get(ctx context.Context, id int64) (engine.Contact, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Contact{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c, err
}

// Insert implements engine.Store. A non-zero c.ID replaces that record.
func (s *SQLite) Insert(ctx context.Context, c engine.Contact) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertStmt, insertArgs(c)...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrDBWrite, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrDBWrite, err)
	}
	s.changed()
	return id, nil
}

// InsertAll implements engine.Store. The batch is atomic.
func (s *SQLite) InsertAll(ctx context.Context, contacts []engine.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBWrite, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range contacts {
		if _, err := stmt.ExecContext(ctx, insertArgs(c)...); err != nil {
			return fmt.Errorf("%s: %w", config.ErrDBWrite, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBWrite, err)
	}

	s.log.Info(config.MsgImported, config.LogKeyCount, len(contacts))
	s.changed()
	return nil
}

// Update implements engine.Store.
func (s *SQLite) Update(ctx context.Context, c engine.Contact) error {
	return s.exec(ctx, c.ID,
		`UPDATE contacts SET name = ?, phone_number = ?, is_favorite = ?, "group" = ?, photo_uri = ?, last_called_at = ? WHERE id = ?`,
		c.Name, c.PhoneNumber, c.IsFavorite, c.Group, nullString(c.PhotoURI), nullMillis(c.LastCalledAt), c.ID)
}

// Delete implements engine.Store.
func (s *SQLite) Delete(ctx context.Context, id int64) error {
	return s.exec(ctx, id, `DELETE FROM contacts WHERE id = ?`, id)
}

// SetFavorite implements engine.Store.
func (s *SQLite) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	return s.exec(ctx, id, `UPDATE contacts SET is_favorite = ? WHERE id = ?`, favorite, id)
}

// SetLastCalled implements engine.Store.
func (s *SQLite) SetLastCalled(ctx context.Context, id int64, at time.Time) error {
	return s.exec(ctx, id, `UPDATE contacts SET last_called_at = ? WHERE id = ?`, at.UnixMilli(), id)
}

// exec runs a single-row write and reports ErrNotFound if nothing matched.
func (s *SQLite) exec(ctx context.Context, id int64, stmt string, args ...any) error {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDBWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	s.changed()
	return nil
}

const insertStmt = `INSERT OR REPLACE INTO contacts (id, name, phone_number, is_favorite, "group", photo_uri, last_called_at)
VALUES (NULLIF(?, 0), ?, ?, ?, ?, ?, ?)`

func insertArgs(c engine.Contact) []any {
	return []any{c.ID, c.Name, c.PhoneNumber, c.IsFavorite, c.Group, nullString(c.PhotoURI), nullMillis(c.LastCalledAt)}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (engine.Contact, error) {
	var (
		c        engine.Contact
		photo    sql.NullString
		lastCall sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.PhoneNumber, &c.IsFavorite, &c.Group, &photo, &lastCall); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("%s: %w", config.ErrDBScan, err)
	}
	c.PhotoURI = photo.String
	if lastCall.Valid {
		t := time.UnixMilli(lastCall.Int64)
		c.LastCalledAt = &t
	}
	return c, nil
}

// escapeLike makes q match literally inside a LIKE pattern.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
