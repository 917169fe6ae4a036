package signature_test

import (
	"bytes"
	"errors"
	"testing"

	"lemmekk/internal/signature"
)

func pngWithZip(filler int) []byte {
	buf := []byte{0x89, 0x50, 0x4E, 0x47}
	buf = append(buf, bytes.Repeat([]byte{0x11}, filler)...)
	buf = append(buf, 0xAE, 0x42, 0x60, 0x82)
	buf = append(buf, 0x50, 0x4B, 0x03, 0x04)
	buf = append(buf, []byte("payload")...)
	return buf
}

func TestLocatePNGFollowedByZip(t *testing.T) {
	buf := pngWithZip(32)

	loc, err := signature.Locate(buf)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	wantEnd := 4 + 32 + 4
	if loc.TrailerEnd != wantEnd {
		t.Fatalf("trailer end = %d, want %d", loc.TrailerEnd, wantEnd)
	}
	if loc.Cover.Format != "png" {
		t.Fatalf("cover = %q, want png", loc.Cover.Format)
	}
	if loc.Archive.Format != "zip" {
		t.Fatalf("archive = %q, want zip", loc.Archive.Format)
	}
	if loc.ArchiveStart != wantEnd {
		t.Fatalf("archive start = %d, want %d", loc.ArchiveStart, wantEnd)
	}
}

func TestLocateArchiveAfterGap(t *testing.T) {
	buf := []byte{0xFF, 0xD8, 0xFF, 0x00, 0xFF, 0xD9, 0x01, 0x02, 0x03}
	buf = append(buf, 0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C, 0x00)

	loc, err := signature.Locate(buf)
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if loc.TrailerEnd != 6 {
		t.Fatalf("trailer end = %d, want 6", loc.TrailerEnd)
	}
	if loc.ArchiveStart != 9 {
		t.Fatalf("archive start = %d, want 9", loc.ArchiveStart)
	}
	if loc.Archive.Format != "7z" {
		t.Fatalf("archive = %q, want 7z", loc.Archive.Format)
	}
}

func TestLocateErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{name: "plain text", buf: []byte("hello world"), want: signature.ErrNotCover},
		{name: "empty", buf: nil, want: signature.ErrNotCover},
		{name: "png without trailer", buf: []byte{0x89, 0x50, 0x4E, 0x47, 0x00, 0x01}, want: signature.ErrTrailerNotFound},
		{name: "gif without archive", buf: []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x00, 0x3B, 0x01}, want: signature.ErrArchiveNotFound},
		// An archive header before the trailer does not count.
		{name: "archive before trailer", buf: []byte{0xFF, 0xD8, 0xFF, 0x50, 0x4B, 0x03, 0x04, 0xFF, 0xD9}, want: signature.ErrArchiveNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signature.Locate(tt.buf)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Locate error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFindArchiveUsesTableOrder(t *testing.T) {
	// zip appears first in the buffer, but rar5 is earlier in the table.
	buf := []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}

	archive, idx, ok := signature.FindArchive(buf)
	if !ok {
		t.Fatal("expected an archive match")
	}
	if archive.Format != "rar5" || idx != 5 {
		t.Fatalf("got %s at %d, want rar5 at 5", archive.Format, idx)
	}
}

func TestIsZipLocalHeader(t *testing.T) {
	if !signature.IsZipLocalHeader([]byte{0x50, 0x4B, 0x03, 0x04, 0x14}) {
		t.Fatal("expected local header match")
	}
	if signature.IsZipLocalHeader([]byte{0x50, 0x4B, 0x07, 0x08}) {
		t.Fatal("spanned marker must not match local header")
	}
	if signature.IsZipLocalHeader([]byte{0x50, 0x4B}) {
		t.Fatal("short buffer must not match")
	}
}
