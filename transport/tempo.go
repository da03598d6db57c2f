// Package transport tracks a playback position in wall-clock time and
// reports it as a fraction of the document length. It produces no sound.
package transport

import (
	"math"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/song"
)

// Tempos outside this range are treated as corrupt and replaced by the
// default.
const (
	MinBPM = 20
	MaxBPM = 300
)

type segment struct {
	tick  int
	bpm   float64
	start time.Duration
}

// TempoMap converts between ticks and elapsed time across tempo changes.
type TempoMap struct {
	resolution smf.MetricTicks
	segments   []segment
}

// NewTempoMap builds a map for the given resolution. A missing tempo at
// tick 0 means song.DefaultTempo.
func NewTempoMap(ticksPerBeat int, changes []song.TempoChange) TempoMap {
	if ticksPerBeat <= 0 {
		ticksPerBeat = song.DefaultTicksPerBeat
	}
	sorted := append([]song.TempoChange(nil), changes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })

	m := TempoMap{resolution: smf.MetricTicks(ticksPerBeat)}
	m.segments = []segment{{tick: 0, bpm: song.DefaultTempo}}
	for _, c := range sorted {
		bpm := c.BPM
		if bpm < MinBPM || bpm > MaxBPM {
			bpm = song.DefaultTempo
		}
		tick := max(0, c.Tick)
		last := &m.segments[len(m.segments)-1]
		if tick == last.tick {
			last.bpm = bpm
			continue
		}
		m.segments = append(m.segments, segment{
			tick:  tick,
			bpm:   bpm,
			start: last.start + m.resolution.Duration(last.bpm, uint32(tick-last.tick)),
		})
	}
	return m
}

// Duration is the time elapsed from tick 0 to tick.
func (m TempoMap) Duration(tick int) time.Duration {
	if tick <= 0 {
		return 0
	}
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].tick > tick }) - 1
	s := m.segments[i]
	return s.start + m.resolution.Duration(s.bpm, uint32(tick-s.tick))
}

// Tick is the tick reached after d has elapsed.
func (m TempoMap) Tick(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].start > d }) - 1
	s := m.segments[i]
	beats := (d - s.start).Seconds() * s.bpm / 60
	return s.tick + int(math.Floor(beats*float64(m.resolution)+1e-6))
}

// BPM is the tempo in effect at tick.
func (m TempoMap) BPM(tick int) float64 {
	i := sort.Search(len(m.segments), func(i int) bool { return m.segments[i].tick > tick }) - 1
	return m.segments[max(0, i)].bpm
}
