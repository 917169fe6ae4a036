package deps

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// ErrUnknownVersion means the binary ran but printed no recognisable banner.
var ErrUnknownVersion = errors.New("unrecognised 7-Zip banner")

// Banners look like "7-Zip 24.08 (x64)", "7-Zip [64] 16.02" or "7-Zip (z) 23.01".
var sevenZipBanner = regexp.MustCompile(`7-Zip(?: \(\w+\))?(?: \[\d+\])? (?P<version>\d+(?:\.\d+)*)`)

const versionProbeTimeout = 10 * time.Second

// SevenZipRequirement describes the archive tool the executor drives.
func SevenZipRequirement(command string) Requirement {
	return Requirement{
		Name:        "7-Zip",
		Command:     command,
		Description: "Required to extract planned jobs",
		Probe:       SevenZipVersion,
	}
}

// SevenZipVersion runs the binary with --help and returns the version from
// its banner. The binary's exit status is ignored since some builds exit
// non-zero for --help.
func SevenZipVersion(ctx context.Context, command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", errors.New("7-Zip command not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, command, "--help").Output()
	if len(out) == 0 && err != nil {
		return "", fmt.Errorf("run %s: %w", command, err)
	}
	version, ok := ParseSevenZipVersion(string(out))
	if !ok {
		return "", ErrUnknownVersion
	}
	return version, nil
}

// ParseSevenZipVersion extracts the version from 7-Zip help output.
func ParseSevenZipVersion(output string) (string, bool) {
	m := sevenZipBanner.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	return m[sevenZipBanner.SubexpIndex("version")], true
}
