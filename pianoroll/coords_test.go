package pianoroll

import "testing"

func TestMapperRoundTrip(t *testing.T) {
	m := NewMapper(DefaultKeyHeight)
	for _, tick := range []int{0, 1, 480, 12345} {
		for _, pitch := range []int{0, 21, 60, 108, 127} {
			x, y := m.ToScene(tick, pitch)
			gotTick, gotPitch := m.ToMusic(x, y)
			if gotTick != tick || gotPitch != pitch {
				t.Errorf("round trip (%d,%d): got (%d,%d)", tick, pitch, gotTick, gotPitch)
			}
		}
	}
}

func TestMapperToScene(t *testing.T) {
	m := NewMapper(15)
	x, y := m.ToScene(960, 60)
	if x != 960 || y != 67*15 {
		t.Fatalf("got (%v,%v), want (960,%v)", x, y, 67*15)
	}
}

func TestMapperToMusicClamps(t *testing.T) {
	m := NewMapper(15)
	tests := []struct {
		x, y  float64
		tick  int
		pitch int
	}{
		{-5, -10, 0, 127},
		{10.4, 128 * 15, 10, 0},
		{10.5, 14.9, 11, 127},
		{479.6, 67*15 + 14, 480, 60},
	}
	for _, tt := range tests {
		tick, pitch := m.ToMusic(tt.x, tt.y)
		if tick != tt.tick || pitch != tt.pitch {
			t.Errorf("ToMusic(%v,%v): got (%d,%d), want (%d,%d)", tt.x, tt.y, tick, pitch, tt.tick, tt.pitch)
		}
	}
}

func TestMapperPitchRows(t *testing.T) {
	m := NewMapper(15)
	if got := m.PitchRows(-30); got != 2 {
		t.Errorf("up two rows: got %d", got)
	}
	if got := m.PitchRows(7); got != 0 {
		t.Errorf("under half a row: got %d", got)
	}
	if got := m.PitchRows(23); got != -2 {
		t.Errorf("down: got %d", got)
	}
}
