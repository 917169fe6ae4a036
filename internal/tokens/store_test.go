package tokens

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "data", "tokens.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func values(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Value
	}
	return out
}

func TestAddDeduplicates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	added, err := store.Add(ctx, "alpha", "beta", "alpha", "", "  ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	added, err = store.Add(ctx, "beta", "gamma")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	n, err := store.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Add(ctx, "alpha", "beta"); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Remove(ctx, "alpha", "missing")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(values(list), []string{"beta"}) {
		t.Fatalf("unexpected tokens %v", values(list))
	}
}

func TestMarkUsed(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Add(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkUsed(ctx, "alpha"); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	if err := store.MarkUsed(ctx, "alpha"); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list[0].UsageCount != 2 || list[0].LastUsedAt.IsZero() {
		t.Fatalf("unexpected token %+v", list[0])
	}
	if err := store.MarkUsed(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCandidatesOrderRecentThenUsage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	use := func(value string, at time.Time, times int) {
		t.Helper()
		store.now = func() time.Time { return at }
		for range times {
			if err := store.MarkUsed(ctx, value); err != nil {
				t.Fatal(err)
			}
		}
	}

	store.now = func() time.Time { return base.AddDate(0, 0, -100) }
	if _, err := store.Add(ctx, "old-heavy", "old-light", "recent-a", "recent-b", "never"); err != nil {
		t.Fatal(err)
	}
	use("old-heavy", base.AddDate(0, 0, -60), 9)
	use("old-light", base.AddDate(0, 0, -45), 2)
	use("recent-a", base.AddDate(0, 0, -10), 1)
	use("recent-b", base.AddDate(0, 0, -2), 1)

	store.now = func() time.Time { return base }
	got, err := store.Candidates(ctx, 30)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	want := []string{"recent-b", "recent-a", "old-heavy", "old-light", "never"}
	if !slices.Equal(values(got), want) {
		t.Fatalf("order = %v, want %v", values(got), want)
	}
}

func TestImportExportPlain(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	res, err := store.Import(ctx, strings.NewReader("alpha\r\nbeta\n\nalpha\n"), FormatPlain)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Read != 3 || res.Added != 2 || res.Skipped != 0 {
		t.Fatalf("unexpected result %+v", res)
	}

	var buf bytes.Buffer
	if err := store.Export(ctx, &buf, FormatPlain); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := buf.String(); got != "alpha\nbeta\n" {
		t.Fatalf("unexpected export %q", got)
	}
}

func TestImportJtmdyMergesCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Add(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkUsed(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}

	input := "alpha\t\t4\nbeta\t\t7\nbroken line\nwith space\t\t2\n"
	res, err := store.Import(ctx, strings.NewReader(input), FormatJtmdy)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Read != 3 || res.Added != 2 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	var buf bytes.Buffer
	if err := store.Export(ctx, &buf, FormatJtmdy); err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "beta\t\t7\nalpha\t\t5\nwith space\t\t2\n"
	if got := buf.String(); got != want {
		t.Fatalf("export = %q, want %q", got, want)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPlain, "Plain": FormatPlain, "JTMDY": FormatJtmdy} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestReopenKeepsTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add(context.Background(), "alpha"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	store, err = OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	n, err := store.Count(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database should remain: %v", err)
	}
}
