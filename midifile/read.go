// Package midifile loads and saves song documents as Standard MIDI Files
// and keeps timestamped backups of saved documents.
package midifile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/debug"
	"go-pianoroll/song"
)

// DrumChannel is MIDI channel 10, zero-based.
const DrumChannel = 9

// Load reads and validates a .mid file.
func Load(path string) (*song.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		kind := ftag.Internal
		if errors.Is(err, fs.ErrNotExist) {
			kind = ftag.NotFound
		}
		return nil, fault.Wrap(err,
			ftag.With(kind),
			fmsg.WithDesc("open midi file", fmt.Sprintf("Could not open %s.", filepath.Base(path))))
	}
	defer f.Close()

	doc, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(filepath.Base(path)))
	}
	debug.Log("file", "loaded %s: %d instruments, %d notes", path, len(doc.Instruments), doc.NoteCount())
	return doc, nil
}

// Read decodes a Standard MIDI File into a document.
func Read(r io.Reader) (*song.Document, error) {
	sm, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("decode smf", "The file is not a readable MIDI file."))
	}
	return Decode(sm)
}

// Decode converts a parsed file. Every channel that plays notes within a
// track becomes one instrument, in order of first note; channel 10 marks
// it as drums. Note-ons pair with note-offs first in, first out per key.
func Decode(sm *smf.SMF) (*song.Document, error) {
	ticks, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, fault.New("unsupported time format",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("unsupported time format", "Only MIDI files timed in ticks per beat can be edited."))
	}

	doc := song.New(int(ticks))
	for i, track := range sm.Tracks {
		d := newTrackDecoder(doc, i)
		tick := 0
		for _, ev := range track {
			tick += int(ev.Delta)
			d.handle(tick, ev.Message)
		}
		d.finish(tick)
	}

	sort.SliceStable(doc.Tempos, func(i, j int) bool { return doc.Tempos[i].Tick < doc.Tempos[j].Tick })
	sort.SliceStable(doc.TimeSignatures, func(i, j int) bool { return doc.TimeSignatures[i].Tick < doc.TimeSignatures[j].Tick })
	sort.SliceStable(doc.Markers, func(i, j int) bool { return doc.Markers[i].Tick < doc.Markers[j].Tick })
	doc.SortAll()

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

type voice struct {
	channel, key uint8
}

type pending struct {
	start, velocity int
}

type trackDecoder struct {
	doc      *song.Document
	index    int
	name     string
	programs [16]uint8
	insts    map[uint8]*song.Instrument
	created  []*song.Instrument
	open     map[voice][]pending
}

func newTrackDecoder(doc *song.Document, index int) *trackDecoder {
	return &trackDecoder{
		doc:   doc,
		index: index,
		insts: make(map[uint8]*song.Instrument),
		open:  make(map[voice][]pending),
	}
}

func (d *trackDecoder) handle(tick int, msg smf.Message) {
	var ch, key, vel, prog, num, den uint8
	var bpm float64
	var text string

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		d.instrument(ch)
		v := voice{ch, key}
		d.open[v] = append(d.open[v], pending{tick, int(vel)})
	case msg.GetNoteEnd(&ch, &key):
		d.close(voice{ch, key}, tick)
	case msg.GetProgramChange(&ch, &prog):
		d.programs[ch] = prog
		if inst := d.insts[ch]; inst != nil && len(inst.Notes) == 0 {
			inst.Program = prog
		}
	case msg.GetMetaTempo(&bpm):
		d.doc.Tempos = append(d.doc.Tempos, song.TempoChange{Tick: tick, BPM: bpm})
	case msg.GetMetaMeter(&num, &den):
		d.doc.TimeSignatures = append(d.doc.TimeSignatures, song.TimeSignature{Tick: tick, Numerator: num, Denominator: den})
	case msg.GetMetaTrackName(&text):
		d.name = text
	case msg.GetMetaMarker(&text):
		d.doc.Markers = append(d.doc.Markers, song.Marker{Tick: tick, Text: text})
	}
}

func (d *trackDecoder) instrument(ch uint8) *song.Instrument {
	if inst, ok := d.insts[ch]; ok {
		return inst
	}
	inst := d.doc.AddInstrument("", d.programs[ch], ch == DrumChannel)
	d.insts[ch] = inst
	d.created = append(d.created, inst)
	return inst
}

// close pairs a note-off with the oldest sounding note on the same key.
// Offs without a matching on are dropped.
func (d *trackDecoder) close(v voice, tick int) {
	queue := d.open[v]
	if len(queue) == 0 {
		return
	}
	p := queue[0]
	d.open[v] = queue[1:]
	d.doc.Append(d.instrument(v.channel), song.Note{
		Pitch:    int(v.key),
		Velocity: p.velocity,
		Start:    p.start,
		End:      tick,
	})
}

// finish ends notes still sounding at the end of the track and names the
// track's instruments.
func (d *trackDecoder) finish(end int) {
	voices := make([]voice, 0, len(d.open))
	for v := range d.open {
		voices = append(voices, v)
	}
	sort.Slice(voices, func(i, j int) bool {
		if voices[i].channel != voices[j].channel {
			return voices[i].channel < voices[j].channel
		}
		return voices[i].key < voices[j].key
	})
	for _, v := range voices {
		for range d.open[v] {
			d.close(v, end)
		}
	}
	name := d.name
	if name == "" {
		name = fmt.Sprintf("Track %d", d.index+1)
	}
	for _, inst := range d.created {
		inst.Name = name
	}
}
