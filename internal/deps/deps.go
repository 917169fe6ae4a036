package deps

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ProbeFunc reports the version of the binary at path.
type ProbeFunc func(ctx context.Context, path string) (string, error)

// Requirement names an external tool and how to recognise it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Probe       ProbeFunc
}

// Status is the outcome of resolving one Requirement.
type Status struct {
	Requirement
	Path      string
	Version   string
	Available bool
	Detail    string
}

// Resolve looks up every requirement on PATH and, when a probe is set,
// asks the binary for its version. A probe that cannot parse a version
// leaves the tool available with an empty Version.
func Resolve(ctx context.Context, requirements ...Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		out[i] = resolve(ctx, req)
	}
	return out
}

func resolve(ctx context.Context, req Requirement) Status {
	s := Status{Requirement: req}
	if req.Command == "" {
		s.Detail = "command not configured"
		return s
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		s.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return s
	}
	s.Path = path
	if req.Probe != nil {
		version, err := req.Probe(ctx, path)
		switch {
		case errors.Is(err, ErrUnknownVersion):
		case err != nil:
			s.Detail = err.Error()
			return s
		default:
			s.Version = version
		}
	}
	s.Available = true
	s.Detail = path
	if s.Version != "" {
		s.Detail = fmt.Sprintf("%s (version %s)", path, s.Version)
	}
	return s
}
