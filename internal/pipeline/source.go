package pipeline

import (
	"fmt"

	"github.com/joseph-ayodele/cv-parser/constants"
)

type sourceKind uint8

const (
	kindInline sourceKind = iota + 1
	kindStored
)

// Source is where a run gets its document bytes from. It is resolved once at
// entry and decides whether the run persists and notifies.
type Source struct {
	kind sourceKind
	id   int64
	data []byte
}

// Inline carries caller-supplied bytes. Runs over it return the record and write nothing.
func Inline(id int64, data []byte) Source {
	return Source{kind: kindInline, id: id, data: data}
}

// StoredRef points at a document in the content store. Runs over it persist and notify.
func StoredRef(id int64) Source {
	return Source{kind: kindStored, id: id}
}

// SourceFor picks the variant: supplied bytes take precedence over a storage fetch.
func SourceFor(id int64, data []byte) Source {
	if len(data) > 0 {
		return Inline(id, data)
	}
	return StoredRef(id)
}

func (s Source) ID() int64 { return s.id }

// Bytes returns the inline document, nil for stored references.
func (s Source) Bytes() []byte { return s.data }

func (s Source) IsInline() bool { return s.kind == kindInline }

// Persists reports whether the run writes the cross-reference and notifies.
func (s Source) Persists() bool { return s.kind == kindStored }

func (s Source) Mode() constants.Mode {
	if s.IsInline() {
		return constants.ModeSync
	}
	return constants.ModeQueued
}

func (s Source) String() string {
	if s.IsInline() {
		return fmt.Sprintf("inline(%d, %d bytes)", s.id, len(s.data))
	}
	return fmt.Sprintf("stored(%d)", s.id)
}
