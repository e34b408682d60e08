package panel

import (
	"fmt"
	"math"
	"time"

	"github.com/ray1729/gpx-journey/pkg/track"
)

// Range is the readout for a span of the progress bar between two points.
type Range struct {
	Start     int     `json:"start"`
	End       int     `json:"end"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Seconds   int64   `json:"seconds"`
	Metres    float64 `json:"metres"`
	// Average speed, km/h; zero when no time passes
	Kmph     float64 `json:"kmph"`
	Duration string  `json:"duration"`
}

func (r Range) String() string {
	return fmt.Sprintf("%s - %s: %.2f km in %s, %.1f km/h", r.StartTime, r.EndTime, r.Metres/1000, r.Duration, r.Kmph)
}

// spanText is like DurationText but keeps seconds for short spans.
func spanText(seconds int64) string {
	s := float64(seconds)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d s", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d min", int64(math.Round(s/60)))
	default:
		return fmt.Sprintf("%d h %d min", seconds/3600, int64(math.Round(float64(seconds%3600)/60)))
	}
}

// NewRange returns the readout for the points between indices i and j,
// in either order. It returns false when either index is out of range.
func NewRange(points []track.Point, i, j int, loc *time.Location) (Range, bool) {
	if i < 0 || j < 0 || i >= len(points) || j >= len(points) {
		return Range{}, false
	}
	if i > j {
		i, j = j, i
	}
	a, b := points[i], points[j]
	r := Range{
		Start:     i,
		End:       j,
		StartTime: time.Unix(a.Time, 0).In(loc).Format("2006-01-02 15:04:05"),
		EndTime:   time.Unix(b.Time, 0).In(loc).Format("2006-01-02 15:04:05"),
		Seconds:   b.Time - a.Time,
		Metres:    track.PathDistance(points[i : j+1]),
	}
	if r.Seconds < 0 {
		r.Seconds = -r.Seconds
	}
	if r.Seconds > 0 {
		r.Kmph = (r.Metres / 1000) / (float64(r.Seconds) / 3600)
	}
	r.Duration = spanText(r.Seconds)
	return r, true
}

// Edge is the readout shown when hovering over one edge of the track.
type Edge struct {
	Index     int    `json:"index"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	// Signed difference of the end and start times
	Seconds  int64   `json:"seconds"`
	Metres   float64 `json:"metres"`
	Duration string  `json:"duration"`
	Distance string  `json:"distance"`
	Speed    string  `json:"speed"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s - %s, %s, %s, %s", e.StartTime, e.EndTime, e.Duration, e.Distance, e.Speed)
}

func edgeSpeedText(metres float64, dt int64) string {
	switch {
	case dt > 0:
		return fmt.Sprintf("%.2f km/h", (metres/1000)/(float64(dt)/3600))
	case dt < 0:
		return "data error"
	case metres > 0:
		return "instant move"
	default:
		return "0.00 km/h (stationary)"
	}
}

// NewEdge returns the readout for the edge from points[i] to points[i+1].
// It returns false when there is no such edge.
func NewEdge(points []track.Point, i int, loc *time.Location) (Edge, bool) {
	if i < 0 || i >= len(points)-1 {
		return Edge{}, false
	}
	a, b := points[i], points[i+1]
	e := Edge{
		Index:     i,
		StartTime: time.Unix(a.Time, 0).In(loc).Format("15:04:05"),
		EndTime:   time.Unix(b.Time, 0).In(loc).Format("15:04:05"),
		Seconds:   b.Time - a.Time,
		Metres:    a.DistanceTo(b),
	}
	dur := e.Seconds
	if dur < 0 {
		dur = -dur
	}
	e.Duration = fmt.Sprintf("%.1f s", float64(dur))
	e.Distance = fmt.Sprintf("%.1f m", e.Metres)
	e.Speed = edgeSpeedText(e.Metres, e.Seconds)
	return e, true
}

// NearestEdge returns the index of the edge whose midpoint is closest to
// (lat, lon) in plain degrees, or -1 when there are fewer than two points.
func NearestEdge(points []track.Point, lat, lon float64) int {
	best, bestSq := -1, math.Inf(1)
	for i := 0; i+1 < len(points); i++ {
		dLat := (points[i].Lat+points[i+1].Lat)/2 - lat
		dLon := (points[i].Lon+points[i+1].Lon)/2 - lon
		if sq := dLat*dLat + dLon*dLon; sq < bestSq {
			best, bestSq = i, sq
		}
	}
	return best
}
