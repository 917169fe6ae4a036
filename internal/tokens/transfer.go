package tokens

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Format is a token text file layout.
type Format string

const (
	// FormatPlain holds one token per line.
	FormatPlain Format = "plain"
	// FormatJtmdy holds "token<TAB><TAB>count" per line.
	FormatJtmdy Format = "jtmdy"
)

var jtmdyLine = regexp.MustCompile(`^(.+)\t\t(\d+)$`)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatPlain, FormatJtmdy:
		return f, nil
	case "":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unknown token format %q (want plain or jtmdy)", name)
	}
}

// ImportResult reports the outcome of Import.
type ImportResult struct {
	// Read is the number of token records parsed.
	Read int
	// Added is the number of tokens that were not stored before.
	Added int
	// Skipped counts lines that did not fit the format.
	Skipped int
}

type record struct {
	value string
	count int
}

// Import reads tokens from r. Tokens already stored have the imported usage
// count added to theirs.
func (s *Store) Import(ctx context.Context, r io.Reader, format Format) (ImportResult, error) {
	records, skipped, err := parseRecords(r, format)
	if err != nil {
		return ImportResult{}, err
	}
	result := ImportResult{Read: len(records), Skipped: skipped}
	timestamp := formatTime(s.now())
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		result.Added = 0
		for _, rec := range records {
			var exists int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tokens WHERE token = ?`, rec.value).Scan(&exists); err != nil {
				return fmt.Errorf("lookup token: %w", err)
			}
			if exists == 0 {
				result.Added++
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tokens (token, usage_count, created_at) VALUES (?, ?, ?)
                 ON CONFLICT(token) DO UPDATE SET usage_count = usage_count + excluded.usage_count`,
				rec.value, rec.count, timestamp,
			); err != nil {
				return fmt.Errorf("import token: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// Export writes all tokens to w, most used first.
func (s *Store) Export(ctx context.Context, w io.Writer, format Format) error {
	all, err := s.List(ctx)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, tok := range all {
		switch format {
		case FormatJtmdy:
			_, err = fmt.Fprintf(bw, "%s\t\t%d\n", tok.Value, tok.UsageCount)
		default:
			_, err = fmt.Fprintln(bw, tok.Value)
		}
		if err != nil {
			return fmt.Errorf("write tokens: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write tokens: %w", err)
	}
	return nil
}

func parseRecords(r io.Reader, format Format) ([]record, int, error) {
	var (
		records []record
		skipped int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch format {
		case FormatJtmdy:
			m := jtmdyLine.FindStringSubmatch(line)
			if m == nil {
				skipped++
				continue
			}
			count, err := strconv.Atoi(m[2])
			if err != nil {
				skipped++
				continue
			}
			records = append(records, record{value: m[1], count: count})
		default:
			records = append(records, record{value: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read tokens: %w", err)
	}
	return records, skipped, nil
}
