package extract

import (
	"context"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"lemmekk/internal/logging"
)

// groupKey identifies the job a file belongs to. Split volumes share a key
// per directory and package; normal files are keyed by their own name.
type groupKey struct {
	split bool
	dir   string
	name  string
}

// aggregator is an arena of jobs indexed by grouping key. Jobs keep the order
// in which their key was first seen.
type aggregator struct {
	logger *slog.Logger
	index  map[groupKey]int
	jobs   []Job
}

func newAggregator(logger *slog.Logger) *aggregator {
	return &aggregator{
		logger: logger,
		index:  make(map[groupKey]int),
	}
}

// Aggregate classifies files and folds them into jobs. Files that cannot be
// classified are logged and skipped.
func Aggregate(ctx context.Context, logger *slog.Logger, files []string) []Job {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "aggregate"))
	agg := newAggregator(logger)
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		agg.add(path)
	}
	return agg.jobs
}

func (a *aggregator) add(path string) {
	c, err := classify(path)
	if err != nil {
		logging.WarnWithContext(a.logger, "file skipped", "classify_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rename the file so its volume number and name are readable"),
			logging.String(logging.FieldImpact, "file not assigned to any job"),
		)
		return
	}
	if c.readErr != nil {
		logging.WarnWithContext(a.logger, "zip header unreadable; treating as regular archive", "zip_header_unreadable",
			logging.String(logging.FieldPath, path),
			logging.Error(c.readErr),
			logging.String(logging.FieldImpact, "legacy zip split detection skipped"),
		)
	}

	switch c.kind {
	case classVolume:
		a.addVolume(path, c)
	case classLegacyZip:
		a.addLegacyZip(path, c)
	default:
		a.addNormal(path, c)
	}
}

func (a *aggregator) addVolume(path string, c classification) {
	key := groupKey{split: true, dir: c.dir, name: norm.NFC.String(c.pkg)}
	idx, ok := a.index[key]
	if !ok {
		job := Job{Package: c.pkg, Kind: Split(c.volume, false)}
		if c.volume == 1 {
			job.Path = path
		} else {
			job.Companions = []string{path}
		}
		a.insert(key, job)
		a.logger.Info("job created",
			logging.String(logging.FieldPackage, c.pkg),
			logging.String(logging.FieldPath, path),
			logging.Int("volume", c.volume),
		)
		return
	}

	job := &a.jobs[idx]
	if c.volume == 1 {
		job.Path = path
	} else {
		if c.volume > job.Kind.Volume() {
			job.Kind = job.Kind.WithVolume(c.volume)
		}
		job.Companions = append(job.Companions, path)
	}
	a.logger.Info("file joined job",
		logging.String(logging.FieldPackage, job.Package),
		logging.String(logging.FieldPath, path),
		logging.Int("volume", c.volume),
	)
}

func (a *aggregator) addLegacyZip(path string, c classification) {
	key := groupKey{split: true, dir: c.dir, name: norm.NFC.String(c.pkg)}
	idx, ok := a.index[key]
	if !ok {
		a.insert(key, Job{
			Package:    c.pkg,
			Kind:       Split(0, true),
			Companions: []string{path},
		})
		a.logger.Info("legacy zip split job created",
			logging.String(logging.FieldPackage, c.pkg),
			logging.String(logging.FieldPath, path),
		)
		return
	}

	job := &a.jobs[idx]
	job.Kind = job.Kind.AsLegacy()
	job.Companions = append(job.Companions, path)
	a.logger.Info("legacy zip volume joined job",
		logging.String(logging.FieldPackage, job.Package),
		logging.String(logging.FieldPath, path),
	)
}

func (a *aggregator) addNormal(path string, c classification) {
	key := groupKey{dir: c.dir, name: norm.NFC.String(c.name)}
	if _, ok := a.index[key]; ok {
		a.logger.Debug("duplicate file ignored", logging.String(logging.FieldPath, path))
		return
	}
	a.insert(key, Job{Package: c.pkg, Kind: Normal(), Path: path})
	a.logger.Debug("job created",
		logging.String(logging.FieldPackage, c.pkg),
		logging.String(logging.FieldPath, path),
	)
}

func (a *aggregator) insert(key groupKey, job Job) {
	if job.Companions == nil {
		job.Companions = []string{}
	}
	a.index[key] = len(a.jobs)
	a.jobs = append(a.jobs, job)
}
