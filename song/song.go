// Package song holds the music document edited by the piano roll: instruments,
// their notes, and read-only tempo/meter/marker metadata.
package song

import (
	"fmt"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

const (
	MinPitch    = 0
	MaxPitch    = 127
	MinVelocity = 1
	MaxVelocity = 127

	DefaultTicksPerBeat = 480
	DefaultVelocity     = 100
	DefaultTempo        = 120.0
)

// NoteID is a stable handle for a note, unique within its Document.
// Zero is never assigned.
type NoteID uint64

// Note is a single note event measured in ticks.
type Note struct {
	ID       NoteID `json:"-"`
	Pitch    int    `json:"pitch"`
	Velocity int    `json:"velocity"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Duration returns End - Start.
func (n Note) Duration() int {
	return n.End - n.Start
}

// Detach returns a copy with no identity, suitable for a clipboard.
func (n Note) Detach() Note {
	n.ID = 0
	return n
}

// clamp enforces the editing invariants: legal pitch and velocity,
// non-negative start and start < end.
func (n *Note) clamp() {
	n.Pitch = ClampPitch(n.Pitch)
	n.Velocity = ClampVelocity(n.Velocity)
	if n.Start < 0 {
		n.End -= n.Start
		n.Start = 0
	}
	if n.End <= n.Start {
		n.End = n.Start + 1
	}
}

// ClampPitch limits p to [MinPitch, MaxPitch].
func ClampPitch(p int) int {
	return max(MinPitch, min(MaxPitch, p))
}

// ClampVelocity limits v to [MinVelocity, MaxVelocity].
func ClampVelocity(v int) int {
	return max(MinVelocity, min(MaxVelocity, v))
}

// Instrument is one track of notes, kept ordered by start tick.
type Instrument struct {
	Name    string  `json:"name"`
	Program uint8   `json:"program"`
	Drum    bool    `json:"drum"`
	Notes   []*Note `json:"notes"`
}

// Sort restores start-tick order. Ties keep their relative order.
func (i *Instrument) Sort() {
	sort.SliceStable(i.Notes, func(a, b int) bool {
		return i.Notes[a].Start < i.Notes[b].Start
	})
}

func (i *Instrument) indexOf(id NoteID) int {
	for idx, n := range i.Notes {
		if n.ID == id {
			return idx
		}
	}
	return -1
}

type TempoChange struct {
	Tick int     `json:"tick"`
	BPM  float64 `json:"bpm"`
}

type TimeSignature struct {
	Tick        int   `json:"tick"`
	Numerator   uint8 `json:"numerator"`
	Denominator uint8 `json:"denominator"`
}

type Marker struct {
	Tick int    `json:"tick"`
	Text string `json:"text"`
}

// Document is the music being edited. Notes are added and removed through
// Document methods so identity lookups stay consistent.
type Document struct {
	TicksPerBeat   int             `json:"ticksPerBeat"`
	Instruments    []*Instrument   `json:"instruments"`
	Tempos         []TempoChange   `json:"tempos,omitempty"`
	TimeSignatures []TimeSignature `json:"timeSignatures,omitempty"`
	Markers        []Marker        `json:"markers,omitempty"`

	nextID NoteID
	owner  map[NoteID]*Instrument
}

// New creates an empty document with no instruments.
func New(ticksPerBeat int) *Document {
	if ticksPerBeat <= 0 {
		ticksPerBeat = DefaultTicksPerBeat
	}
	return &Document{
		TicksPerBeat: ticksPerBeat,
		owner:        make(map[NoteID]*Instrument),
	}
}

// NewDefault creates the document used when editing starts from nothing:
// default resolution and a single piano instrument.
func NewDefault() *Document {
	d := New(DefaultTicksPerBeat)
	d.AddInstrument("New Instrument", 0, false)
	return d
}

// AddInstrument appends an empty instrument.
func (d *Document) AddInstrument(name string, program uint8, drum bool) *Instrument {
	inst := &Instrument{Name: name, Program: program, Drum: drum}
	d.Instruments = append(d.Instruments, inst)
	return inst
}

// Default returns the instrument that receives added and pasted notes,
// creating one if the document has none.
func (d *Document) Default() *Instrument {
	if len(d.Instruments) == 0 {
		d.AddInstrument("New Instrument", 0, false)
	}
	return d.Instruments[0]
}

// Append adds n to inst without clamping or re-sorting. Loaders use it to
// build a document in bulk and call SortAll once at the end.
func (d *Document) Append(inst *Instrument, n Note) *Note {
	if d.owner == nil {
		d.owner = make(map[NoteID]*Instrument)
	}
	d.nextID++
	n.ID = d.nextID
	p := &n
	inst.Notes = append(inst.Notes, p)
	d.owner[p.ID] = inst
	return p
}

// Insert clamps n, adds it to inst and keeps inst ordered.
func (d *Document) Insert(inst *Instrument, n Note) *Note {
	n.clamp()
	p := d.Append(inst, n)
	inst.Sort()
	return p
}

// Lookup resolves a note handle. It returns nils for unknown ids.
func (d *Document) Lookup(id NoteID) (*Note, *Instrument) {
	inst, ok := d.owner[id]
	if !ok {
		return nil, nil
	}
	idx := inst.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	return inst.Notes[idx], inst
}

// Remove deletes a note from its instrument.
func (d *Document) Remove(id NoteID) bool {
	inst, ok := d.owner[id]
	if !ok {
		return false
	}
	idx := inst.indexOf(id)
	if idx < 0 {
		return false
	}
	inst.Notes = append(inst.Notes[:idx], inst.Notes[idx+1:]...)
	delete(d.owner, id)
	return true
}

// Update applies fn to the note, re-clamps it and re-sorts its instrument.
func (d *Document) Update(id NoteID, fn func(n *Note)) bool {
	n, inst := d.Lookup(id)
	if n == nil {
		return false
	}
	fn(n)
	n.ID = id
	n.clamp()
	inst.Sort()
	return true
}

// SortAll restores start order on every instrument.
func (d *Document) SortAll() {
	for _, inst := range d.Instruments {
		inst.Sort()
	}
}

// NoteCount returns the number of notes across all instruments.
func (d *Document) NoteCount() int {
	total := 0
	for _, inst := range d.Instruments {
		total += len(inst.Notes)
	}
	return total
}

// Each calls fn for every note in instrument order.
func (d *Document) Each(fn func(inst *Instrument, n *Note)) {
	for _, inst := range d.Instruments {
		for _, n := range inst.Notes {
			fn(inst, n)
		}
	}
}

// IDs returns every note handle in instrument order.
func (d *Document) IDs() []NoteID {
	ids := make([]NoteID, 0, d.NoteCount())
	d.Each(func(_ *Instrument, n *Note) {
		ids = append(ids, n.ID)
	})
	return ids
}

// MaxTick is the last tick that carries any event.
func (d *Document) MaxTick() int {
	maxTick := 0
	d.Each(func(_ *Instrument, n *Note) {
		maxTick = max(maxTick, n.End)
	})
	for _, t := range d.Tempos {
		maxTick = max(maxTick, t.Tick)
	}
	for _, ts := range d.TimeSignatures {
		maxTick = max(maxTick, ts.Tick)
	}
	for _, m := range d.Markers {
		maxTick = max(maxTick, m.Tick)
	}
	return maxTick
}

// Validate checks what a loaded document must satisfy before it is handed
// to the editor.
func (d *Document) Validate() error {
	if d.TicksPerBeat <= 0 {
		return invalid(fmt.Sprintf("ticks per beat must be positive, got %d", d.TicksPerBeat))
	}
	for i, inst := range d.Instruments {
		for _, n := range inst.Notes {
			if n.Pitch < MinPitch || n.Pitch > MaxPitch {
				return invalid(fmt.Sprintf("instrument %d: pitch %d out of range", i, n.Pitch))
			}
			if n.Start < 0 || n.Start > n.End {
				return invalid(fmt.Sprintf("instrument %d: note %d..%d has inverted or negative span", i, n.Start, n.End))
			}
		}
	}
	return nil
}

func invalid(msg string) error {
	return fault.New(msg, ftag.With(ftag.InvalidArgument), fmsg.WithDesc(msg, "The MIDI document is not valid."))
}
