// Package panel computes the display values of the progress bar, the
// elevation profile and the segment list.
package panel

import (
	"fmt"
	"math"
	"time"

	"github.com/ray1729/gpx-journey/pkg/colorize"
	"github.com/ray1729/gpx-journey/pkg/track"
)

const clockLayout = "15:04"

type Tick struct {
	Index int     `json:"index"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
}

// Progress holds everything needed to draw the progress bar: one colour
// per edge, the elevation profile scaled to [0,1] and the time ticks.
type Progress struct {
	Colors      []string  `json:"colors"`
	Profile     []float64 `json:"profile"`
	MinAltitude float64   `json:"minAltitude"`
	MaxAltitude float64   `json:"maxAltitude"`
	Ticks       []Tick    `json:"ticks"`
}

// Position returns the horizontal position in [0,1] of point i out of n.
func Position(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// NewProgress lays out the progress bar for points, with tick labels
// rendered in loc.
func NewProgress(points []track.Point, opts colorize.Options, loc *time.Location) *Progress {
	n := len(points)
	p := &Progress{
		Colors:  colorize.EdgeColors(points, opts),
		Profile: make([]float64, n),
	}
	if n == 0 {
		return p
	}
	p.MinAltitude, p.MaxAltitude = track.ElevationRange(points)
	if p.MaxAltitude > p.MinAltitude {
		for i, pt := range points {
			p.Profile[i] = (pt.Alt - p.MinAltitude) / (p.MaxAltitude - p.MinAltitude)
		}
	}
	step := n / 5
	if step < 1 {
		step = 1
	}
	for i := 0; i < n; i += step {
		p.Ticks = append(p.Ticks, Tick{
			Index: i,
			Label: time.Unix(points[i].Time, 0).In(loc).Format(clockLayout),
			X:     Position(i, n),
		})
	}
	return p
}

// IndexAt maps a horizontal position in [0,1] to the nearest point index.
func IndexAt(x float64, n int) int {
	if n < 1 {
		return -1
	}
	i := int(math.Round(x * float64(n-1)))
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// Cursor is the readout shown for the point under the scrubber.
type Cursor struct {
	Index    int     `json:"index"`
	Time     string  `json:"time"`
	Altitude float64 `json:"altitude"`
	// Speed over the edge ending at this point, km/h
	Speed string `json:"speed"`
	// Distance travelled up to this point, km
	Distance string  `json:"distance"`
	X        float64 `json:"x"`
	Profile  float64 `json:"profile"`
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s (%.1f m) %s km/h, %s km", c.Time, c.Altitude, c.Speed, c.Distance)
}

func speedText(points []track.Point, idx int) string {
	if idx <= 0 || idx >= len(points) {
		return "--"
	}
	a, b := points[idx-1], points[idx]
	dt := b.Time - a.Time
	if dt == 0 {
		return "0.00"
	}
	v := (a.DistanceTo(b) / 1000) / (float64(dt) / 3600)
	return fmt.Sprintf("%.2f", v)
}

func cumulativeText(points []track.Point, idx int) string {
	if idx < 0 || idx >= len(points) || len(points) < 2 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", track.PathDistance(points[:idx+1])/1000)
}

// NewCursor returns the readout for points[idx]. It returns false when idx
// is out of range.
func NewCursor(points []track.Point, idx int, loc *time.Location) (Cursor, bool) {
	if idx < 0 || idx >= len(points) {
		return Cursor{}, false
	}
	p := points[idx]
	c := Cursor{
		Index:    idx,
		Time:     time.Unix(p.Time, 0).In(loc).Format("2006-01-02 15:04:05"),
		Altitude: p.Alt,
		Speed:    speedText(points, idx),
		Distance: cumulativeText(points, idx),
		X:        Position(idx, len(points)),
	}
	if lo, hi := track.ElevationRange(points); hi > lo {
		c.Profile = (p.Alt - lo) / (hi - lo)
	}
	return c, true
}
