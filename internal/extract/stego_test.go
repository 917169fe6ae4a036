package extract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lemmekk/internal/testsupport"
)

func writeCover(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testsupport.WriteBytes(t, path, data)
	return path
}

func TestStegoScanTrailerBoundary(t *testing.T) {
	data, trailerEnd := testsupport.StegoPNG(0, 32)
	path := writeCover(t, "cover.png", data)

	job, err := StegoScanner{Boundary: BoundaryTrailer}.Scan(context.Background(), Job{Package: "cover", Kind: Normal(), Path: path})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !job.Kind.IsStego() {
		t.Fatalf("expected stego, got %s", job.Kind)
	}
	if job.Kind.Offset() != int64(trailerEnd) {
		t.Fatalf("offset = %d, want %d", job.Kind.Offset(), trailerEnd)
	}
}

func TestStegoScanArchiveBoundary(t *testing.T) {
	data, trailerEnd := testsupport.StegoPNG(7, 32)
	path := writeCover(t, "cover.png", data)

	trailer, err := StegoScanner{Boundary: BoundaryTrailer}.Scan(context.Background(), Job{Kind: Normal(), Path: path})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	archive, err := StegoScanner{Boundary: BoundaryArchive}.Scan(context.Background(), Job{Kind: Normal(), Path: path})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if trailer.Kind.Offset() != int64(trailerEnd) {
		t.Fatalf("trailer offset = %d, want %d", trailer.Kind.Offset(), trailerEnd)
	}
	if archive.Kind.Offset() != int64(trailerEnd+7) {
		t.Fatalf("archive offset = %d, want %d", archive.Kind.Offset(), trailerEnd+7)
	}
}

func TestStegoScanPassesThroughNonCovers(t *testing.T) {
	path := writeCover(t, "notes.txt", []byte("plain text, nothing hidden"))
	in := Job{Package: "notes", Kind: Normal(), Path: path}

	out, err := StegoScanner{}.Scan(context.Background(), in)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !out.Kind.IsNormal() || out.Path != path {
		t.Fatalf("job changed: %+v", out)
	}
}

func TestStegoScanIgnoresNonNormalJobs(t *testing.T) {
	in := Job{Kind: Split(2, false), Path: "/does/not/exist.part1.rar", Companions: []string{"x"}}
	out, err := StegoScanner{}.Scan(context.Background(), in)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if out.Kind != in.Kind {
		t.Fatalf("kind changed to %s", out.Kind)
	}
}

func TestStegoScanFailures(t *testing.T) {
	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47}
	pngTrailer := []byte{0xAE, 0x42, 0x60, 0x82}
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "no trailer", data: testsupport.Concat(pngHeader, testsupport.Filler(64)), want: ErrTrailerNotFound},
		{name: "no archive", data: testsupport.Concat(pngHeader, testsupport.Filler(8), pngTrailer, testsupport.Filler(64)), want: ErrArchiveNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCover(t, "cover.png", tt.data)
			_, err := StegoScanner{}.Scan(context.Background(), Job{Kind: Normal(), Path: path})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStegoScanMissingFile(t *testing.T) {
	_, err := StegoScanner{}.Scan(context.Background(), Job{Kind: Normal(), Path: filepath.Join(t.TempDir(), "gone.png")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadHeadRespectsLimit(t *testing.T) {
	path := writeCover(t, "big.bin", testsupport.Filler(1024))
	buf, err := readHead(context.Background(), path, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 100 {
		t.Fatalf("read %d bytes, want 100", len(buf))
	}
}
