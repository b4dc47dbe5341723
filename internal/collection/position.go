// Package collection mirrors a remote resume collection and mediates every write to it.
//
// The backend addresses stored records only by their offset in a list, so a Position
// is a capability bound to the mirror snapshot it was read from. Any successful
// mutation invalidates every Position handed out before it.
package collection

import (
	"fmt"

	"github.com/jonathan/resume-editor/internal/types"
)

// Position is a list offset paired with the snapshot it was observed in.
type Position struct {
	Kind   types.Kind
	Index  int
	Length int    // mirror length when the position was read
	Epoch  uint64 // store epoch when the position was read
}

func (p Position) String() string {
	return fmt.Sprintf("%s[%d/%d]@%d", p.Kind, p.Index, p.Length, p.Epoch)
}

// Mirror is an immutable snapshot of one collection as last fetched from the backend.
type Mirror struct {
	kind    types.Kind
	epoch   uint64
	loaded  bool
	records []types.Record
}

// NewMirror builds a snapshot from records, copying them.
func NewMirror(kind types.Kind, epoch uint64, records []types.Record) Mirror {
	m := Mirror{kind: kind, epoch: epoch, loaded: true, records: make([]types.Record, len(records))}
	for i, r := range records {
		m.records[i] = r.Clone()
	}
	return m
}

// Kind returns the collection kind.
func (m Mirror) Kind() types.Kind { return m.kind }

// Epoch returns the store epoch the snapshot was installed at.
func (m Mirror) Epoch() uint64 { return m.epoch }

// Loaded reports whether the snapshot came from a fetch rather than being the initial empty mirror.
func (m Mirror) Loaded() bool { return m.loaded }

// Len returns the number of records.
func (m Mirror) Len() int { return len(m.records) }

// At returns a copy of the record at i.
func (m Mirror) At(i int) (types.Record, bool) {
	if i < 0 || i >= len(m.records) {
		return nil, false
	}
	return m.records[i].Clone(), true
}

// Records returns copies of every record in order.
func (m Mirror) Records() []types.Record {
	out := make([]types.Record, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out
}

// Equal reports whether both snapshots hold the same records in the same order.
func (m Mirror) Equal(records []types.Record) bool {
	if len(m.records) != len(records) {
		return false
	}
	for i := range m.records {
		if !m.records[i].Equal(records[i]) {
			return false
		}
	}
	return true
}

// Entry is a stored record together with the position it was read from.
type Entry struct {
	Record   types.Record
	Position Position
}

// Draft is a record under edit. A nil Position means the record has not been stored yet.
type Draft struct {
	Kind     types.Kind
	Record   types.Record
	Position *Position
}

// NewDraft seeds a draft from an existing entry, or a blank record when existing is nil.
// The draft never aliases the entry's record.
func NewDraft(kind types.Kind, existing *Entry, defaultLogo string) Draft {
	if existing == nil {
		return Draft{Kind: kind, Record: types.Blank(kind, defaultLogo)}
	}
	pos := existing.Position
	return Draft{Kind: kind, Record: existing.Record.Clone(), Position: &pos}
}
