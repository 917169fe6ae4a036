package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lemmekk/internal/config"
)

// ErrNotFound is returned when a token is not in the store.
var ErrNotFound = errors.New("token not found")

// Token is a stored archive password with usage statistics.
type Token struct {
	Value      string
	UsageCount int
	CreatedAt  time.Time
	// LastUsedAt is zero for tokens that never opened an archive.
	LastUsedAt time.Time
}

// Store manages token persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the token database configured in cfg.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return OpenPath(cfg.Tokens.Database)
}

// OpenPath opens the token database at path, creating it if needed.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create token database directory: %w", err)
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

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Add inserts tokens that are not already stored and returns how many were
// new. Blank values are ignored.
func (s *Store) Add(ctx context.Context, values ...string) (int, error) {
	values = cleanValues(values)
	if len(values) == 0 {
		return 0, nil
	}
	timestamp := formatTime(s.now())
	added := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		added = 0
		for _, v := range values {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO tokens (token, usage_count, created_at) VALUES (?, 0, ?)
                 ON CONFLICT(token) DO NOTHING`,
				v, timestamp,
			)
			if err != nil {
				return fmt.Errorf("insert token: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Remove deletes tokens and returns how many existed.
func (s *Store) Remove(ctx context.Context, values ...string) (int, error) {
	values = cleanValues(values)
	if len(values) == 0 {
		return 0, nil
	}
	removed := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		removed = 0
		for _, v := range values {
			res, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, v)
			if err != nil {
				return fmt.Errorf("delete token: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			removed += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// MarkUsed records a successful use of value.
func (s *Store) MarkUsed(ctx context.Context, value string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE tokens SET usage_count = usage_count + 1, last_used_at = ? WHERE token = ?`,
		formatTime(s.now()), value,
	)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, value)
	}
	return nil
}

// List returns all tokens by usage count, most used first.
func (s *Store) List(ctx context.Context) ([]Token, error) {
	return s.query(ctx, `SELECT `+tokenColumns+` FROM tokens ORDER BY usage_count DESC, token`)
}

// Count returns the number of stored tokens.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tokens`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return n, nil
}

// Candidates returns tokens in the order an executor should try them: tokens
// used within the last recentDays days, most recent first, then all others
// by usage count.
func (s *Store) Candidates(ctx context.Context, recentDays int) ([]Token, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	boundary := s.now().AddDate(0, 0, -recentDays)
	return prioritize(all, boundary), nil
}

func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimRight(v, "\r\n")
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
