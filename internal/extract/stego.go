package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lemmekk/internal/logging"
	"lemmekk/internal/signature"
)

// ScanLimit bounds how much of a file the steganography scan reads.
const ScanLimit = 8 << 20

// Boundary selects the committed carve offset of a steganographic container.
type Boundary string

const (
	// BoundaryTrailer splits right after the cover format's trailer.
	BoundaryTrailer Boundary = "trailer"
	// BoundaryArchive splits at the start of the embedded archive signature.
	BoundaryArchive Boundary = "archive"
)

var (
	// ErrTrailerNotFound means a cover header matched but its trailer is not
	// within the scanned head of the file.
	ErrTrailerNotFound = signature.ErrTrailerNotFound
	// ErrArchiveNotFound means no archive signature follows the cover trailer.
	ErrArchiveNotFound = signature.ErrArchiveNotFound
)

// StegoScanner detects archives appended to cover images.
type StegoScanner struct {
	Boundary Boundary
	// Timeout bounds the header read. Zero means no deadline.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Scan inspects a Normal job's file. Jobs of other kinds and files that are
// not covers are returned unchanged. A cover without trailer or without a
// trailing archive yields an error and the job must be dropped.
func (s StegoScanner) Scan(ctx context.Context, job Job) (Job, error) {
	if !job.Kind.IsNormal() {
		return job, nil
	}
	logger := logging.NewComponentLogger(s.Logger, "stego")

	buf, err := readHead(ctx, job.Path, ScanLimit, s.Timeout)
	if err != nil {
		return job, err
	}
	loc, err := signature.Locate(buf)
	switch {
	case errors.Is(err, signature.ErrNotCover):
		logger.Debug("no cover signature", logging.String(logging.FieldPath, job.Path))
		return job, nil
	case err != nil:
		return job, fmt.Errorf("%s cover %s: %w", loc.Cover.Format, job.Path, err)
	}

	offset := int64(loc.TrailerEnd)
	if s.Boundary == BoundaryArchive {
		offset = int64(loc.ArchiveStart)
	}
	logger.Info("steganographic container detected",
		logging.String(logging.FieldPath, job.Path),
		logging.String("cover", loc.Cover.Format),
		logging.String("archive", loc.Archive.Format),
		logging.Int("trailer_end", loc.TrailerEnd),
		logging.Int("archive_start", loc.ArchiveStart),
		logging.Int64("offset", offset),
	)
	job.Kind = Stego(offset)
	return job, nil
}

type readResult struct {
	buf []byte
	err error
}

// readHead reads at most limit bytes from the start of path. With a positive
// timeout the read is abandoned once the deadline passes.
func readHead(ctx context.Context, path string, limit int64, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	done := make(chan readResult, 1)
	go func() {
		defer f.Close()
		buf, err := io.ReadAll(io.LimitReader(f, limit))
		done <- readResult{buf: buf, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("read %s: %w", path, res.err)
		}
		return res.buf, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("read %s: %w", path, ctx.Err())
	}
}
