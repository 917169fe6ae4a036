package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"lemmekk/internal/fileutil"
	"lemmekk/internal/logging"
)

// Carve output extensions.
const (
	CoverExt   = "basis"
	PayloadExt = "file"
)

var (
	// ErrTargetExists means a carve output name is already taken.
	ErrTargetExists = errors.New("carve target already exists")
	// ErrSourceBusy means another carve holds the source file.
	ErrSourceBusy = errors.New("source is being carved")
)

// CarveTargets returns the cover fragment and payload paths for source.
func CarveTargets(source string) (cover, payload string) {
	return fileutil.ReplaceExt(source, CoverExt), fileutil.ReplaceExt(source, PayloadExt)
}

// Carver splits steganographic containers into a cover fragment and the
// embedded payload.
type Carver struct {
	// Timeout bounds the copy. Zero means no deadline.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Carve splits a Stego job with a positive offset. Other jobs are returned
// unchanged. Existing targets are never overwritten. Partial outputs from a
// failed copy are left on disk.
func (c Carver) Carve(ctx context.Context, job Job) (Job, error) {
	if !job.Kind.IsStego() || job.Kind.Offset() <= 0 {
		return job, nil
	}
	source := job.Path
	coverPath, payloadPath := CarveTargets(source)
	for _, target := range []string{coverPath, payloadPath} {
		exists, err := fileutil.Exists(target)
		if err != nil {
			return job, fmt.Errorf("stat %s: %w", target, err)
		}
		if exists {
			return job, fmt.Errorf("%w: %s", ErrTargetExists, target)
		}
	}

	lock := flock.New(source)
	locked, err := lock.TryLock()
	if err != nil {
		return job, fmt.Errorf("lock %s: %w", source, err)
	}
	if !locked {
		return job, fmt.Errorf("%w: %s", ErrSourceBusy, source)
	}
	defer func() { _ = lock.Unlock() }()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	if err := carveFile(ctx, source, coverPath, payloadPath, job.Kind.Offset()); err != nil {
		return job, err
	}

	logging.NewComponentLogger(c.Logger, "carve").Info("container carved",
		logging.String(logging.FieldPath, source),
		logging.String("cover", coverPath),
		logging.String("payload", payloadPath),
		logging.Int64("offset", job.Kind.Offset()),
	)
	job.Companions = []string{coverPath, source}
	job.Path = payloadPath
	return job, nil
}

func carveFile(ctx context.Context, source, coverPath, payloadPath string, offset int64) error {
	src, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open %s: %w", source, err)
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}
	mode := info.Mode().Perm()

	r := ctxReader{ctx: ctx, r: src}
	if err := writeNew(coverPath, r, mode, offset); err != nil {
		return err
	}
	return writeNew(payloadPath, r, mode, -1)
}

func writeNew(path string, r io.Reader, mode os.FileMode, limit int64) error {
	_, err := fileutil.CopyToNew(path, r, mode, limit)
	switch {
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%w: %s", ErrTargetExists, path)
	case err != nil:
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
