package extract

import (
	"errors"
	"fmt"
	"log/slog"

	"lemmekk/internal/fileutil"
	"lemmekk/internal/logging"
)

var (
	// ErrCompanionCount marks a job whose file set does not match its kind.
	ErrCompanionCount = errors.New("companion count does not match job kind")
	// ErrMissingFirstVolume marks a split job whose first volume was never seen.
	ErrMissingFirstVolume = errors.New("first volume missing")
)

// Check verifies that the job's companions are consistent with its kind.
//
//   - Normal: no companions.
//   - Split: Volume-1 companions, or Volume for legacy zip splits, and a
//     non-empty Path.
//   - Stego: before carving, no companions and Path is the container. After
//     carving, a positive offset, companions [cover, source] and Path the
//     payload, all named as CarveTargets names them for source.
func (j Job) Check() error {
	got := len(j.Companions)
	switch j.Kind.Tag() {
	case KindSplit:
		want := j.Kind.Volume() - 1
		if j.Kind.LegacyZipSplit() {
			want = j.Kind.Volume()
		}
		if got != want {
			return fmt.Errorf("%w: %s has %d companions, want %d", ErrCompanionCount, j.Kind, got, want)
		}
		if j.Path == "" {
			return fmt.Errorf("%w: %s", ErrMissingFirstVolume, j.Kind)
		}
	case KindStego:
		return j.checkStego()
	default:
		if got != 0 {
			return fmt.Errorf("%w: normal job has %d companions", ErrCompanionCount, got)
		}
	}
	return nil
}

// Validate returns the jobs that pass Check, logging each one dropped.
func Validate(logger *slog.Logger, jobs []Job) []Job {
	logger = logging.NewComponentLogger(logger, "validate")
	kept := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if err := job.Check(); err != nil {
			logging.WarnWithContext(logger, "incomplete job dropped", "job_invalid",
				logging.String(logging.FieldPackage, job.Package),
				logging.Any("files", job.Files()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "make sure every volume of the archive is present"),
				logging.String(logging.FieldImpact, "archive not extracted"),
			)
			continue
		}
		kept = append(kept, job)
	}
	return kept
}

func (j Job) checkStego() error {
	switch len(j.Companions) {
	case 0:
		if j.Kind.Offset() > 0 && fileutil.Extension(j.Path) == PayloadExt {
			return fmt.Errorf("%w: carved payload %s has no cover or source", ErrCompanionCount, j.Path)
		}
		return nil
	case 2:
		if j.Kind.Offset() <= 0 {
			return fmt.Errorf("%w: %s cannot have carve outputs", ErrCompanionCount, j.Kind)
		}
		cover, payload := CarveTargets(j.Companions[1])
		if j.Companions[0] != cover || j.Path != payload {
			return fmt.Errorf("%w: %s does not match carve outputs of %s", ErrCompanionCount, j.Path, j.Companions[1])
		}
		return nil
	default:
		return fmt.Errorf("%w: %s has %d companions, want 0 before carving or 2 after", ErrCompanionCount, j.Kind, len(j.Companions))
	}
}
