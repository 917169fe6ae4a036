package collect

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"lemmekk/internal/fileutil"
	"lemmekk/internal/logging"
)

// Collect enumerates every regular file reachable from sources and removes
// those whose extension is listed in excluded. Extensions are compared
// exactly, without the leading dot. Order follows the sources and the walk.
// A file reached through more than one source is listed once.
func Collect(ctx context.Context, logger *slog.Logger, sources, excluded []string) []string {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "collect"))

	fl := &fileList{seen: make(map[string]struct{})}
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		info, err := os.Stat(src)
		if err != nil {
			logging.WarnWithContext(logger, "source unreadable", "source_unreadable",
				logging.String(logging.FieldPath, src),
				logging.Error(err),
				logging.String(logging.FieldImpact, "source skipped"),
			)
			continue
		}
		switch {
		case info.Mode().IsRegular():
			logger.Debug("source is a file", logging.String(logging.FieldPath, src))
			fl.add(logger, src)
		case info.IsDir():
			logger.Debug("source is a directory", logging.String(logging.FieldPath, src))
			walk(ctx, logger, src, fl)
		default:
			logger.Debug("source is not a regular file", logging.String(logging.FieldPath, src))
		}
	}

	if len(excluded) == 0 {
		return fl.files
	}
	logger.Debug("filtering extensions", logging.Any("excluded", excluded))
	return Exclude(fl.files, excluded)
}

type fileList struct {
	files []string
	seen  map[string]struct{}
}

func (l *fileList) add(logger *slog.Logger, path string) {
	key := filepath.Clean(path)
	if _, dup := l.seen[key]; dup {
		logger.Debug("file already collected", logging.String(logging.FieldPath, path))
		return
	}
	l.seen[key] = struct{}{}
	l.files = append(l.files, path)
}

// Exclude returns files without those whose extension is in excluded.
func Exclude(files, excluded []string) []string {
	skip := make(map[string]struct{}, len(excluded))
	for _, ext := range excluded {
		skip[ext] = struct{}{}
	}
	kept := files[:0:0]
	for _, f := range files {
		if _, ok := skip[fileutil.Extension(f)]; ok {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// walk enumerates src recursively. A symlinked src is resolved first and
// results are reported under the src prefix.
func walk(ctx context.Context, logger *slog.Logger, src string, fl *fileList) {
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		logging.WarnWithContext(logger, "cannot resolve source directory", "source_unreadable",
			logging.String(logging.FieldPath, src),
			logging.Error(err),
			logging.String(logging.FieldImpact, "source skipped"),
		)
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			path = filepath.Join(src, rel)
		}
		if err != nil {
			logging.WarnWithContext(logger, "cannot read directory entry", "walk_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "subtree skipped"),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			fl.add(logger, path)
			return nil
		}
		// Links to files are followed; nested directory links are not.
		if d.Type()&fs.ModeSymlink != 0 {
			if info, statErr := os.Stat(path); statErr == nil && info.Mode().IsRegular() {
				fl.add(logger, path)
			}
		}
		return nil
	})
}
