package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extension returns the extension of the final path element without the
// leading dot. Dot files such as ".bashrc" have no extension.
func Extension(path string) string {
	name := filepath.Base(path)
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return name[idx+1:]
}

// Stem returns the final path element with its extension removed.
func Stem(path string) string {
	name := filepath.Base(path)
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return name
	}
	return name[:idx]
}

// ReplaceExt returns path with its extension replaced by ext (given without
// the dot). A path without extension gains one.
func ReplaceExt(path, ext string) string {
	return filepath.Join(filepath.Dir(path), Stem(path)+"."+ext)
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned so callers do not mistake a permission problem for a free name.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
