package locate

import (
	"github.com/ray1729/gpx-journey/pkg/track"
)

// Revisit is a pair of points at (nearly) the same place but some way
// apart along the track, such as the two passes of an out-and-back
// section.
type Revisit struct {
	First  int
	Second int
	// Distance along the track, metres
	FirstDistance  float64
	SecondDistance float64
}

// Revisits finds pairs of points within fuzz metres of each other whose
// distance apart along the track is greater than minGap and less than
// maxGap.
func Revisits(points []track.Point, fuzz, minGap, maxGap float64) []Revisit {
	along := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		along[i] = along[i-1] + points[i-1].DistanceTo(points[i])
	}
	ix := NewIndex(points)
	var found []Revisit
	for i, p := range points {
		for _, j := range ix.Within(p.Lat, p.Lon, fuzz) {
			if j <= i {
				continue
			}
			gap := along[j] - along[i]
			if gap > minGap && gap < maxGap {
				found = append(found, Revisit{First: i, Second: j, FirstDistance: along[i], SecondDistance: along[j]})
			}
		}
	}
	return found
}
