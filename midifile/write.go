package midifile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/debug"
	"go-pianoroll/song"
)

// maxTicksPerBeat is the largest resolution a metric SMF header holds.
const maxTicksPerBeat = 0x7FFF

// Save writes doc to path as a format 1 file. The file is replaced
// atomically.
func Save(path string, doc *song.Document) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pianoroll-*.mid")
	if err != nil {
		return fault.Wrap(err, fmsg.WithDesc("create temp file", fmt.Sprintf("Could not write to %s.", dir)))
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := Write(w, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fault.Wrap(err, fmsg.With("flush midi file"))
	}
	if err := tmp.Close(); err != nil {
		return fault.Wrap(err, fmsg.With("close midi file"))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fault.Wrap(err, fmsg.WithDesc("replace midi file", fmt.Sprintf("Could not save %s.", filepath.Base(path))))
	}
	debug.Log("file", "saved %s: %d notes", path, doc.NoteCount())
	return nil
}

// Write encodes doc as a Standard MIDI File.
func Write(w io.Writer, doc *song.Document) error {
	sm, err := Encode(doc)
	if err != nil {
		return err
	}
	if _, err := sm.WriteTo(w); err != nil {
		return fault.Wrap(err, fmsg.With("write smf"))
	}
	return nil
}

type timed struct {
	tick int
	off  bool
	msg  []byte
}

// Encode builds a format 1 file: track 0 carries tempo, meter and marker
// events, then one track per instrument. Drum instruments play on channel
// 10; melodic instruments take the other channels in turn.
func Encode(doc *song.Document) (*smf.SMF, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.TicksPerBeat > maxTicksPerBeat {
		return nil, fault.New("resolution out of range",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("resolution out of range", fmt.Sprintf("%d ticks per beat cannot be stored in a MIDI file.", doc.TicksPerBeat)))
	}

	sm := smf.NewSMF1()
	sm.TimeFormat = smf.MetricTicks(doc.TicksPerBeat)

	var meta []timed
	for _, t := range doc.Tempos {
		meta = append(meta, timed{tick: t.Tick, msg: smf.MetaTempo(t.BPM)})
	}
	for _, ts := range doc.TimeSignatures {
		meta = append(meta, timed{tick: ts.Tick, msg: smf.MetaMeter(ts.Numerator, ts.Denominator)})
	}
	for _, m := range doc.Markers {
		meta = append(meta, timed{tick: m.Tick, msg: smf.MetaMarker(m.Text)})
	}
	if err := sm.Add(buildTrack(meta)); err != nil {
		return nil, fault.Wrap(err, fmsg.With("add meta track"))
	}

	next := uint8(0)
	for _, inst := range doc.Instruments {
		ch := uint8(DrumChannel)
		if !inst.Drum {
			ch = next
			next = (next + 1) % 16
			if next == DrumChannel {
				next++
			}
		}

		events := []timed{
			{tick: 0, msg: smf.MetaTrackSequenceName(inst.Name)},
			{tick: 0, msg: midi.ProgramChange(ch, inst.Program)},
		}
		for _, n := range inst.Notes {
			key := uint8(n.Pitch)
			events = append(events,
				timed{tick: n.Start, msg: midi.NoteOn(ch, key, uint8(song.ClampVelocity(n.Velocity)))},
				// a zero-length note keeps its off after its own on
				timed{tick: n.End, off: n.End > n.Start, msg: midi.NoteOff(ch, key)},
			)
		}
		if err := sm.Add(buildTrack(events)); err != nil {
			return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("add track %q", inst.Name)))
		}
	}
	return sm, nil
}

// buildTrack orders events by tick, note-offs before anything else at the
// same tick, and converts them to deltas.
func buildTrack(events []timed) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var track smf.Track
	last := 0
	for _, ev := range events {
		track.Add(uint32(ev.tick-last), ev.msg)
		last = ev.tick
	}
	track.Close(0)
	return track
}
