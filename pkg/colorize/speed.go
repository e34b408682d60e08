package colorize

import (
	"math"
	"sort"

	"github.com/ray1729/gpx-journey/pkg/track"
)

// Edges shorter than this (metres) borrow distance and time from their
// neighbours when colouring by averaged speed.
const DefaultMinEdgeDistance = 10.0

func edgeSpeed(dist float64, dt int64) float64 {
	if dt <= 0 {
		return 0
	}
	return dist / float64(dt)
}

// EdgeSpeeds returns the speed in m/s of each edge between consecutive
// points, with zero for edges that take no time.
func EdgeSpeeds(points []track.Point) []float64 {
	if len(points) < 2 {
		return nil
	}
	speeds := make([]float64, len(points)-1)
	for i := range speeds {
		speeds[i] = edgeSpeed(points[i].DistanceTo(points[i+1]), points[i+1].Time-points[i].Time)
	}
	return speeds
}

// AveragedEdgeSpeeds is like EdgeSpeeds, except that an edge shorter than
// minDistance takes the average speed over a run of neighbouring edges,
// extended backwards and then forwards until the run covers minDistance
// or reaches the ends of the track.
func AveragedEdgeSpeeds(points []track.Point, minDistance float64) []float64 {
	if len(points) < 2 {
		return nil
	}
	n := len(points) - 1
	dists := make([]float64, n)
	durations := make([]int64, n)
	for i := 0; i < n; i++ {
		dists[i] = points[i].DistanceTo(points[i+1])
		durations[i] = points[i+1].Time - points[i].Time
	}
	speeds := make([]float64, n)
	for i := 0; i < n; i++ {
		if dists[i] >= minDistance {
			speeds[i] = edgeSpeed(dists[i], durations[i])
			continue
		}
		dist, dur := dists[i], durations[i]
		for j := i - 1; j >= 0 && dist < minDistance; j-- {
			dist += dists[j]
			dur += durations[j]
		}
		for j := i + 1; j < n && dist < minDistance; j++ {
			dist += dists[j]
			dur += durations[j]
		}
		speeds[i] = edgeSpeed(dist, dur)
	}
	return speeds
}

// Range is the span of values mapped onto the colour scale.
type Range struct {
	Min float64
	Max float64
}

// PercentileRange returns the 1st and 99th percentile of the speeds,
// taken by index without interpolation so a few GPS spikes do not
// stretch the scale.
func PercentileRange(speeds []float64) Range {
	if len(speeds) == 0 {
		return Range{}
	}
	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	return Range{
		Min: sorted[int(math.Floor(0.01*n))],
		Max: sorted[int(math.Floor(0.99*n))],
	}
}

// Normalize maps v into [0,1]; a degenerate range maps everything to 0.
func (r Range) Normalize(v float64) float64 {
	if r.Max <= r.Min {
		return 0
	}
	return clamp01((v - r.Min) / (r.Max - r.Min))
}
