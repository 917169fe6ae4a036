package fileutil

import (
	"errors"
	"io"
	"os"
)

// CopyToNew streams r into dst, which must not exist yet, and sets mode on
// it. A non-negative limit copies exactly limit bytes and fails with
// io.ErrUnexpectedEOF when r ends early. A negative limit copies to EOF.
// A partially written dst is left in place on error.
func CopyToNew(dst string, r io.Reader, mode os.FileMode, limit int64) (int64, error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	var n int64
	if limit < 0 {
		n, err = io.Copy(out, r)
	} else {
		n, err = io.CopyN(out, r, limit)
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
	}
	if err != nil {
		return n, err
	}
	return n, out.Close()
}
