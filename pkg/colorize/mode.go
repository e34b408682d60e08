package colorize

import (
	"fmt"
	"strings"

	"github.com/ray1729/gpx-journey/pkg/track"
)

type Mode string

const (
	ModeFixed Mode = "fixed"
	ModeSpeed Mode = "speed"
	ModeTime  Mode = "time"
)

// FixedColor is used for every edge in ModeFixed.
const FixedColor = "#007bff"

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFixed, ModeSpeed, ModeTime:
		return m, nil
	case "":
		return ModeSpeed, nil
	}
	return "", fmt.Errorf("unrecognized colour mode %q", s)
}

type Options struct {
	Mode Mode
	// Windowed selects AveragedEdgeSpeeds over EdgeSpeeds in ModeSpeed
	Windowed bool
	// MinEdgeDistance in metres; zero means DefaultMinEdgeDistance
	MinEdgeDistance float64
	// Range, when set, replaces the percentile range of the points being
	// coloured, so that a subset can be shown on the whole track's scale.
	Range *Range
}

func DefaultOptions() Options {
	return Options{Mode: ModeSpeed, MinEdgeDistance: DefaultMinEdgeDistance}
}

// SpeedRange returns the percentile range of the speeds of points.
func (o Options) SpeedRange(points []track.Point) Range {
	return PercentileRange(o.Speeds(points))
}

// Speeds returns the per-edge speeds selected by the options.
func (o Options) Speeds(points []track.Point) []float64 {
	if !o.Windowed {
		return EdgeSpeeds(points)
	}
	min := o.MinEdgeDistance
	if min <= 0 {
		min = DefaultMinEdgeDistance
	}
	return AveragedEdgeSpeeds(points, min)
}

// EdgeColors returns one CSS colour for each edge between consecutive
// points. In ModeTime the colour of an edge is taken from its first point.
func EdgeColors(points []track.Point, opts Options) []string {
	if len(points) < 2 {
		return nil
	}
	colors := make([]string, len(points)-1)
	switch opts.Mode {
	case ModeSpeed:
		speeds := opts.Speeds(points)
		r := PercentileRange(speeds)
		if opts.Range != nil {
			r = *opts.Range
		}
		for i, v := range speeds {
			colors[i] = CSS(r.Normalize(v))
		}
	case ModeTime:
		times := TimeFractions(points)
		for i := range colors {
			colors[i] = CSS(times[i])
		}
	default:
		for i := range colors {
			colors[i] = FixedColor
		}
	}
	return colors
}

// TimeFractions maps each point's time onto [0,1] between the first and
// last point. A track with no duration maps to all zeros.
func TimeFractions(points []track.Point) []float64 {
	fs := make([]float64, len(points))
	if len(points) == 0 {
		return fs
	}
	t0 := points[0].Time
	span := points[len(points)-1].Time - t0
	if span <= 0 {
		return fs
	}
	for i, p := range points {
		fs[i] = clamp01(float64(p.Time-t0) / float64(span))
	}
	return fs
}

// DurationColors colours each stop by its duration relative to the
// shortest and longest stop.
func DurationColors(stops []track.Stop) []string {
	if len(stops) == 0 {
		return nil
	}
	r := Range{Min: float64(stops[0].Duration), Max: float64(stops[0].Duration)}
	for _, s := range stops[1:] {
		d := float64(s.Duration)
		if d < r.Min {
			r.Min = d
		}
		if d > r.Max {
			r.Max = d
		}
	}
	colors := make([]string, len(stops))
	for i, s := range stops {
		colors[i] = CSS(r.Normalize(float64(s.Duration)))
	}
	return colors
}
