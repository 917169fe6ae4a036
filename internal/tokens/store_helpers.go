package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const tokenColumns = "token, usage_count, created_at, last_used_at"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := range busyRetryAttempts {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return res, err
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Token, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var out []Token
	for rows.Next() {
		tok, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return out, nil
}

func scanToken(scanner interface{ Scan(dest ...any) error }) (Token, error) {
	var (
		tok        Token
		createdRaw string
		usedRaw    sql.NullString
	)
	if err := scanner.Scan(&tok.Value, &tok.UsageCount, &createdRaw, &usedRaw); err != nil {
		return Token{}, fmt.Errorf("scan token: %w", err)
	}
	tok.CreatedAt = parseTime(createdRaw)
	if usedRaw.Valid {
		tok.LastUsedAt = parseTime(usedRaw.String)
	}
	return tok, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// prioritize splits tokens at boundary: recent ones by last use descending,
// the rest by usage count descending. Ties keep the input order.
func prioritize(all []Token, boundary time.Time) []Token {
	var recent, other []Token
	for _, tok := range all {
		if !tok.LastUsedAt.IsZero() && !tok.LastUsedAt.Before(boundary) {
			recent = append(recent, tok)
		} else {
			other = append(other, tok)
		}
	}
	slices.SortStableFunc(recent, func(a, b Token) int { return b.LastUsedAt.Compare(a.LastUsedAt) })
	slices.SortStableFunc(other, func(a, b Token) int { return b.UsageCount - a.UsageCount })
	return append(recent, other...)
}
