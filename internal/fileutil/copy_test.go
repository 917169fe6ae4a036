package fileutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyToNewLimited(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "head.bin")
	r := strings.NewReader("coverpayload")

	n, err := CopyToNew(dst, r, 0o640, 5)
	if err != nil || n != 5 {
		t.Fatalf("CopyToNew = %d, %v", n, err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "cover" {
		t.Fatalf("content mismatch: got %q", got)
	}
	rest, _ := io.ReadAll(r)
	if string(rest) != "payload" {
		t.Fatalf("reader should stop at the limit, remaining %q", rest)
	}
}

func TestCopyToNewUnlimited(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "all.bin")
	if _, err := CopyToNew(dst, strings.NewReader("data"), 0o755, -1); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	// umask may clear some bits
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected owner execute bit, got %o", info.Mode().Perm())
	}
}

func TestCopyToNewRefusesExisting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "taken.bin")
	if err := os.WriteFile(dst, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CopyToNew(dst, strings.NewReader("second"), 0o644, -1); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "first" {
		t.Fatalf("existing file modified: %q", got)
	}
}

func TestCopyToNewShortSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "short.bin")
	n, err := CopyToNew(dst, strings.NewReader("abc"), 0o644, 10)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if n != 3 {
		t.Fatalf("copied %d bytes, want 3", n)
	}
	if got, _ := os.ReadFile(dst); string(got) != "abc" {
		t.Fatalf("partial output should be kept, got %q", got)
	}
}
