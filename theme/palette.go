package theme

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

//go:embed palettes/plasma.gpl
var plasmaGPL []byte

type RGB [3]uint8

// Palette is an ordered color ramp read from a GIMP .gpl file.
type Palette struct {
	Name   string
	Colors []RGB
}

// DefaultPalette is the built-in plasma gradient.
func DefaultPalette() *Palette {
	p, err := ParseGPL(bytes.NewReader(plasmaGPL))
	if err != nil {
		panic(fmt.Sprintf("built-in palette: %v", err))
	}
	return p
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("open palette", fmt.Sprintf("Could not open palette %s.", path)))
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With(path))
	}
	return p, nil
}

// ParseGPL reads a GIMP palette. Header, comment and malformed lines are
// skipped; a palette without any color is an error.
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if c, ok := parseColor(line); ok {
			p.Colors = append(p.Colors, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fault.Wrap(err, fmsg.With("read palette"))
	}
	if len(p.Colors) == 0 {
		return nil, fault.New("no colors in palette",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("no colors in palette", "The palette file has no colors."))
	}
	return p, nil
}

// parseColor reads "R G B [name]" with each channel in 0..255.
func parseColor(line string) (RGB, bool) {
	if line == "" || line[0] == '#' {
		return RGB{}, false
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return RGB{}, false
	}
	var c RGB
	for i := range c {
		v, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return RGB{}, false
		}
		c[i] = uint8(v)
	}
	return c, true
}

// Lookup interpolates the ramp at norm, clamped to 0..1.
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	pos := math.Max(0, math.Min(1, norm)) * float64(last)
	i := min(int(pos), max(0, last-1))
	if last == 0 {
		return p.Colors[0]
	}
	t := pos - float64(i)
	a, b := p.Colors[i], p.Colors[i+1]
	var c RGB
	for ch := range c {
		c[ch] = uint8(float64(a[ch]) + (float64(b[ch])-float64(a[ch]))*t)
	}
	return c
}

// Index is the color at i without interpolation, clamped to the ramp.
func (p *Palette) Index(i int) RGB {
	return p.Colors[max(0, min(len(p.Colors)-1, i))]
}
