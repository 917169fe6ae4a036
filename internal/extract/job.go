package extract

import (
	"encoding/json"
	"fmt"
)

// KindTag identifies the variant held by a Kind.
type KindTag uint8

const (
	KindNormal KindTag = iota
	KindSplit
	KindStego
)

func (t KindTag) String() string {
	switch t {
	case KindSplit:
		return "split"
	case KindStego:
		return "stego"
	default:
		return "normal"
	}
}

// Kind classifies a job. Values are immutable; stages that reclassify a job
// build a new Kind and assign it.
type Kind struct {
	tag    KindTag
	volume int
	legacy bool
	offset int64
}

// Normal is a single self-contained archive.
func Normal() Kind { return Kind{tag: KindNormal} }

// Split is a multi-volume archive with the highest volume number observed.
// legacy marks WinRAR style zip splits recognised by header rather than name.
func Split(volume int, legacy bool) Kind {
	return Kind{tag: KindSplit, volume: volume, legacy: legacy}
}

// Stego is an archive appended to a cover file at offset.
func Stego(offset int64) Kind { return Kind{tag: KindStego, offset: offset} }

func (k Kind) Tag() KindTag          { return k.tag }
func (k Kind) IsNormal() bool        { return k.tag == KindNormal }
func (k Kind) IsSplit() bool         { return k.tag == KindSplit }
func (k Kind) IsStego() bool         { return k.tag == KindStego }
func (k Kind) Volume() int           { return k.volume }
func (k Kind) LegacyZipSplit() bool  { return k.legacy }
func (k Kind) Offset() int64         { return k.offset }
func (k Kind) WithVolume(v int) Kind { return Split(v, k.legacy) }
func (k Kind) AsLegacy() Kind        { return Split(k.volume, true) }

func (k Kind) String() string {
	switch k.tag {
	case KindSplit:
		if k.legacy {
			return fmt.Sprintf("split(%d, legacy zip)", k.volume)
		}
		return fmt.Sprintf("split(%d)", k.volume)
	case KindStego:
		return fmt.Sprintf("stego(%d)", k.offset)
	default:
		return "normal"
	}
}

type kindJSON struct {
	Type           string `json:"type"`
	Volume         int    `json:"volume,omitempty"`
	LegacyZipSplit bool   `json:"legacy_zip_split,omitempty"`
	Offset         int64  `json:"offset,omitempty"`
}

// MarshalJSON renders the variant with its payload fields.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(kindJSON{
		Type:           k.tag.String(),
		Volume:         k.volume,
		LegacyZipSplit: k.legacy,
		Offset:         k.offset,
	})
}

// Job is one logical archive ready for extraction.
type Job struct {
	// Package is the logical archive name shared by all volumes.
	Package string `json:"package"`
	Kind    Kind   `json:"kind"`
	// Path is the file the decompressor opens. For split archives it is the
	// first volume and may be empty until that volume is seen.
	Path string `json:"path"`
	// Token is the password used by the executor. Planning leaves it empty.
	Token string `json:"token,omitempty"`
	// Companions are the other files belonging to this job, disposed of
	// together with Path after a successful extraction.
	Companions []string `json:"companions"`
}

// Files returns Path followed by Companions, skipping an empty Path.
func (j Job) Files() []string {
	files := make([]string, 0, len(j.Companions)+1)
	if j.Path != "" {
		files = append(files, j.Path)
	}
	return append(files, j.Companions...)
}
