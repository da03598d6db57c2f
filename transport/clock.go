package transport

import (
	"context"
	"math"
	"sync"
	"time"

	"go-pianoroll/debug"
	"go-pianoroll/song"
)

// DefaultInterval is how often a playing clock reports its position.
const DefaultInterval = 100 * time.Millisecond

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "PLAY"
	case Paused:
		return "PAUSE"
	default:
		return "STOP"
	}
}

// Position is a snapshot of the transport.
type Position struct {
	State    State
	Tick     int
	Fraction float64 // Tick over the document length, 0..1
	Elapsed  time.Duration
	Total    time.Duration
	BPM      float64
}

// Clock is a wall-clock playback position over a loaded document. It is
// safe for concurrent use; Run delivers positions on Positions.
type Clock struct {
	mu       sync.Mutex
	tempo    TempoMap
	endTick  int
	total    time.Duration
	state    State
	offset   time.Duration // elapsed when last started, paused or seeked
	started  time.Time
	interval time.Duration
	now      func() time.Time

	updates chan Position
}

func NewClock(interval time.Duration) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Clock{
		tempo:    NewTempoMap(song.DefaultTicksPerBeat, nil),
		interval: interval,
		now:      time.Now,
		updates:  make(chan Position, 1),
	}
}

// Load stops the clock and measures doc. A nil or empty document has
// zero length and cannot play.
func (c *Clock) Load(doc *song.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Stopped
	c.offset = 0
	if doc == nil {
		c.tempo = NewTempoMap(song.DefaultTicksPerBeat, nil)
		c.endTick, c.total = 0, 0
		return
	}
	c.tempo = NewTempoMap(doc.TicksPerBeat, doc.Tempos)
	c.endTick = doc.MaxTick()
	c.total = c.tempo.Duration(c.endTick)
	debug.Log("transport", "loaded: %d ticks, %v", c.endTick, c.total)
}

// Measure re-reads the length and tempo of an edited document without
// moving the clock. A position past the new end is clamped to it.
func (c *Clock) Measure(doc *song.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if doc == nil {
		return
	}
	elapsed := c.elapsedLocked()
	c.tempo = NewTempoMap(doc.TicksPerBeat, doc.Tempos)
	c.endTick = doc.MaxTick()
	c.total = c.tempo.Duration(c.endTick)
	c.offset = min(elapsed, c.total)
	c.started = c.now()
	if c.total <= 0 {
		c.state, c.offset = Stopped, 0
	}
}

// Play starts or resumes. Playing from the end restarts from the top.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing || c.total <= 0 {
		return
	}
	if c.offset >= c.total {
		c.offset = 0
	}
	c.state = Playing
	c.started = c.now()
	debug.Log("transport", "play from %v", c.offset)
}

// Pause freezes the position.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing {
		return
	}
	c.offset = c.elapsedLocked()
	c.state = Paused
}

// Stop rewinds to the start.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Stopped
	c.offset = 0
}

// Toggle pauses a playing clock and plays otherwise.
func (c *Clock) Toggle() {
	c.mu.Lock()
	playing := c.state == Playing
	c.mu.Unlock()
	if playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// Seek jumps to fraction of the document length. A stopped clock becomes
// paused there.
func (c *Clock) Seek(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.total <= 0 {
		return
	}
	fraction = max(0, min(1, fraction))
	c.offset = c.tempo.Duration(int(math.Round(fraction * float64(c.endTick))))
	c.started = c.now()
	if c.state == Stopped {
		c.state = Paused
	}
}

// SeekTicks moves by delta ticks from the current position.
func (c *Clock) SeekTicks(delta int) {
	pos := c.Position()
	c.mu.Lock()
	end := c.endTick
	c.mu.Unlock()
	if end <= 0 {
		return
	}
	c.Seek(float64(pos.Tick+delta) / float64(end))
}

// Position reports where the clock is now. A playing clock that has run
// past the end is stopped and rewound.
func (c *Clock) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	elapsed := c.elapsedLocked()
	if c.state == Playing && elapsed >= c.total {
		c.state = Stopped
		c.offset = 0
		elapsed = 0
		debug.Log("transport", "reached end")
	}
	tick := min(c.tempo.Tick(elapsed), c.endTick)
	pos := Position{
		State:   c.state,
		Tick:    tick,
		Elapsed: elapsed,
		Total:   c.total,
		BPM:     c.tempo.BPM(tick),
	}
	if c.endTick > 0 {
		pos.Fraction = float64(tick) / float64(c.endTick)
	}
	return pos
}

// Positions delivers the position every interval while playing and once
// when playback ends. Only the latest undelivered position is kept.
func (c *Clock) Positions() <-chan Position {
	return c.updates
}

// Run ticks until ctx is done.
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	wasPlaying := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			playing := c.state == Playing
			c.mu.Unlock()
			if !playing && !wasPlaying {
				continue
			}
			pos := c.Position()
			wasPlaying = pos.State == Playing
			c.publish(pos)
		}
	}
}

func (c *Clock) publish(pos Position) {
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- pos:
	default:
	}
}

func (c *Clock) elapsedLocked() time.Duration {
	if c.state != Playing {
		return c.offset
	}
	return c.offset + c.now().Sub(c.started)
}
