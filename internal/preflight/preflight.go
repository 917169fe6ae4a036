package preflight

import (
	"context"
	"fmt"
	"path/filepath"

	"lemmekk/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckSevenZip(ctx, cfg.Extract.SevenZipBinary))

	if len(cfg.Extract.Sources) == 0 {
		results = append(results, Result{Name: "Sources", Detail: "none configured"})
	}
	for i, src := range cfg.Extract.Sources {
		name := fmt.Sprintf("Source %d", i+1)
		results = append(results, CheckSourceAccess(name, src, cfg.Extract.Steganography))
	}

	results = append(results, CheckWritableParent("Token database", cfg.Tokens.Database))
	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

// CheckWritableParent verifies that the directory that will hold path is
// writable, walking up to the nearest existing ancestor.
func CheckWritableParent(name, path string) Result {
	dir := filepath.Dir(path)
	for {
		res := CheckDirectoryAccess(name, dir)
		if res.Passed || !isMissing(dir) {
			if res.Passed {
				res.Detail = fmt.Sprintf("%s (writable via %s)", path, dir)
			}
			return res
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return res
		}
		dir = parent
	}
}
