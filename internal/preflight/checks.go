package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"lemmekk/internal/config"
	"lemmekk/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSourceAccess verifies that a source file or directory can be read.
// With carve set, the directory that receives carve outputs must also be
// writable.
func CheckSourceAccess(name, path string, carve bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	mode := uint32(unix.R_OK)
	target := path
	if info.IsDir() {
		mode |= unix.X_OK
	}
	if err := unix.Access(target, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	if !carve {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
	}

	if !info.IsDir() {
		target = filepath.Dir(path)
	}
	if err := unix.Access(target, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: carving needs write access to %s: %v)", path, target, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSevenZip verifies that the 7-Zip binary runs and reports its version.
func CheckSevenZip(ctx context.Context, command string) Result {
	status := deps.Resolve(ctx, deps.SevenZipRequirement(command))[0]
	if status.Available && status.Version == "" {
		return Result{Name: status.Name, Passed: true, Detail: fmt.Sprintf("%s (unknown version)", status.Path)}
	}
	return Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
}

// CheckSystemDeps evaluates all external binaries for the given config.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.Resolve(ctx, deps.SevenZipRequirement(cfg.Extract.SevenZipBinary))
}

func isMissing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
