package signature

import (
	"bytes"
	"errors"
)

// Cover describes an image format that can carry trailing data after its
// terminator.
type Cover struct {
	Format  string
	Header  []byte
	Trailer []byte
}

// Archive describes an archive format recognised by its leading bytes.
type Archive struct {
	Format string
	Header []byte
}

// ZipLocalHeader is the standard ZIP local file header ("PK\x03\x04").
var ZipLocalHeader = []byte{0x50, 0x4B, 0x03, 0x04}

// Covers is checked in order; the first header that prefixes the buffer wins.
//
//nolint:gochecknoglobals
var Covers = []Cover{
	{Format: "jpeg", Header: []byte{0xFF, 0xD8, 0xFF}, Trailer: []byte{0xFF, 0xD9}},
	// IEND chunk CRC.
	{Format: "png", Header: []byte{0x89, 0x50, 0x4E, 0x47}, Trailer: []byte{0xAE, 0x42, 0x60, 0x82}},
	{Format: "gif", Header: []byte{0x47, 0x49, 0x46, 0x38}, Trailer: []byte{0x00, 0x3B}},
}

// Archives is checked in order; the first entry found anywhere in the
// searched region wins, regardless of position.
//
//nolint:gochecknoglobals
var Archives = []Archive{
	// RAR v5 (longer match first).
	{Format: "rar5", Header: []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x01, 0x00}},
	{Format: "rar4", Header: []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}},
	{Format: "7z", Header: []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}},
	{Format: "zip", Header: ZipLocalHeader},
	{Format: "xz", Header: []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},
}

var (
	// ErrNotCover reports that the buffer does not start with a known cover header.
	ErrNotCover = errors.New("no cover signature")
	// ErrTrailerNotFound reports a cover header without its terminator.
	ErrTrailerNotFound = errors.New("cover trailer not found")
	// ErrArchiveNotFound reports that no archive signature follows the trailer.
	ErrArchiveNotFound = errors.New("archive signature not found after trailer")
)

// Location is the result of a successful Locate call. Offsets are absolute
// positions in the scanned buffer.
type Location struct {
	Cover        Cover
	TrailerEnd   int
	Archive      Archive
	ArchiveStart int
}

// MatchCover returns the first cover whose header prefixes buf.
func MatchCover(buf []byte) (Cover, bool) {
	for _, c := range Covers {
		if bytes.HasPrefix(buf, c.Header) {
			return c, true
		}
	}
	return Cover{}, false
}

// FindTrailer returns the position just past the first occurrence of the
// cover's trailer.
func FindTrailer(buf []byte, c Cover) (int, bool) {
	if len(c.Trailer) == 0 {
		return 0, false
	}
	idx := bytes.Index(buf, c.Trailer)
	if idx < 0 {
		return 0, false
	}
	return idx + len(c.Trailer), true
}

// FindArchive walks Archives in table order and returns the first one that
// occurs in buf together with its position.
func FindArchive(buf []byte) (Archive, int, bool) {
	for _, a := range Archives {
		if idx := bytes.Index(buf, a.Header); idx >= 0 {
			return a, idx, true
		}
	}
	return Archive{}, 0, false
}

// Locate runs the full cover/trailer/archive search over buf. ErrNotCover
// means the buffer is simply not a cover image; the other errors mean it
// claimed to be one but no safe split point exists.
func Locate(buf []byte) (Location, error) {
	cover, ok := MatchCover(buf)
	if !ok {
		return Location{}, ErrNotCover
	}
	end, ok := FindTrailer(buf, cover)
	if !ok {
		return Location{Cover: cover}, ErrTrailerNotFound
	}
	archive, rel, ok := FindArchive(buf[end:])
	if !ok {
		return Location{Cover: cover, TrailerEnd: end}, ErrArchiveNotFound
	}
	return Location{
		Cover:        cover,
		TrailerEnd:   end,
		Archive:      archive,
		ArchiveStart: end + rel,
	}, nil
}

// IsZipLocalHeader reports whether head begins with the ZIP local file header.
func IsZipLocalHeader(head []byte) bool {
	return bytes.HasPrefix(head, ZipLocalHeader)
}
