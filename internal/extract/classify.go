package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"unicode/utf8"

	"lemmekk/internal/fileutil"
	"lemmekk/internal/signature"
)

// Volume name patterns, tried in order. Each captures the package name and the
// volume number.
var volumePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?P<package>.+)\.part(?P<vol>\d+)\.(?:rar|exe)$`),
	regexp.MustCompile(`(?i)^(?P<package>.+)\.(?:7z|zip|tar)\.(?P<vol>\d{3,})$`),
	regexp.MustCompile(`(?i)^(?P<package>.+)\.z(?P<vol>\d{2,})$`),
}

var (
	errUnresolvableName = errors.New("file name is not valid UTF-8")
	errBadVolume        = errors.New("unparsable volume number")
)

type classKind uint8

const (
	classNormal classKind = iota
	classVolume
	classLegacyZip
)

// classification is the outcome of looking at a single file.
type classification struct {
	kind    classKind
	dir     string
	name    string
	pkg     string
	volume  int
	readErr error
}

func classify(path string) (classification, error) {
	name := filepath.Base(path)
	if !utf8.ValidString(name) {
		return classification{}, errUnresolvableName
	}
	c := classification{dir: filepath.Dir(path), name: name}

	if pkg, vol, ok, err := matchVolume(name); ok {
		if err != nil {
			return classification{}, err
		}
		c.kind = classVolume
		c.pkg = pkg
		c.volume = vol
		return c, nil
	}

	c.pkg = fileutil.Stem(name)
	if fileutil.Extension(name) == "zip" {
		legacy, err := isLegacyZipSplit(path)
		if err != nil {
			c.readErr = err
		} else if legacy {
			c.kind = classLegacyZip
		}
	}
	return c, nil
}

// matchVolume reports whether name follows a multi-volume naming convention.
func matchVolume(name string) (pkg string, volume int, ok bool, err error) {
	for _, re := range volumePatterns {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		pkg = m[re.SubexpIndex("package")]
		raw := m[re.SubexpIndex("vol")]
		v, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return pkg, 0, true, fmt.Errorf("%w %q: %v", errBadVolume, raw, convErr)
		}
		return pkg, v, true, nil
	}
	return "", 0, false, nil
}

// isLegacyZipSplit reports whether a .zip file lacks the local file header,
// which is how WinRAR marks the final volume of a zip split.
func isLegacyZipSplit(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(signature.ZipLocalHeader))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return !signature.IsZipLocalHeader(head[:n]), nil
}
