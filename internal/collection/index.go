package collection

import (
	"github.com/jonathan/resume-editor/internal/resumeapi"
)

// Op is the write a commit resolves to.
type Op int

const (
	// OpCreate appends a new record
	OpCreate Op = iota
	// OpUpdate replaces the record at a position
	OpUpdate
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Intent is the resolved create-or-update decision for a draft.
type Intent struct {
	Op       Op
	Position Position // zero for OpCreate
}

// RecordIndex decides create-vs-update for drafts against one mirror snapshot.
type RecordIndex struct {
	mirror Mirror
	epoch  uint64
}

// NewRecordIndex returns an index whose current epoch is the mirror's own.
func NewRecordIndex(m Mirror) RecordIndex {
	return RecordIndex{mirror: m, epoch: m.epoch}
}

// Mirror returns the snapshot the index resolves against.
func (ix RecordIndex) Mirror() Mirror {
	return ix.mirror
}

// Resolve returns Create for a draft without a position and UpdateAt for a
// position read from the current snapshot. Any other position is stale: there is
// no fallback to another index and no matching by field values.
func (ix RecordIndex) Resolve(d Draft) (Intent, error) {
	if d.Position == nil {
		return Intent{Op: OpCreate}, nil
	}
	if err := ix.Check("update", *d.Position); err != nil {
		return Intent{}, err
	}
	return Intent{Op: OpUpdate, Position: *d.Position}, nil
}

// Check returns a stale *resumeapi.PersistError unless p addresses a record of the current snapshot.
func (ix RecordIndex) Check(op string, p Position) error {
	switch {
	case p.Kind != ix.mirror.kind,
		p.Epoch != ix.epoch,
		ix.mirror.epoch != ix.epoch,
		p.Length != ix.mirror.Len(),
		p.Index < 0,
		p.Index >= ix.mirror.Len():
		return resumeapi.NewStalePositionError(op, string(p.Kind), p.Index)
	}
	return nil
}

// PositionAt returns the position of the i-th record of the current snapshot.
func (ix RecordIndex) PositionAt(i int) (Position, error) {
	p := Position{Kind: ix.mirror.kind, Index: i, Length: ix.mirror.Len(), Epoch: ix.mirror.epoch}
	if err := ix.Check("read", p); err != nil {
		return Position{}, err
	}
	return p, nil
}

// Entry returns the i-th record of the current snapshot with its position.
func (ix RecordIndex) Entry(i int) (Entry, error) {
	p, err := ix.PositionAt(i)
	if err != nil {
		return Entry{}, err
	}
	rec, _ := ix.mirror.At(i)
	return Entry{Record: rec, Position: p}, nil
}

// Entries returns every record of the current snapshot with its position.
func (ix RecordIndex) Entries() []Entry {
	if ix.mirror.epoch != ix.epoch {
		return nil
	}
	out := make([]Entry, 0, ix.mirror.Len())
	for i := 0; i < ix.mirror.Len(); i++ {
		e, err := ix.Entry(i)
		if err != nil {
			break
		}
		out = append(out, e)
	}
	return out
}
