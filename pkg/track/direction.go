package track

import (
	"math"

	"github.com/ray1729/gpx-journey/pkg/geodesy"
)

// metres per degree of latitude on the haversine sphere
var metresPerDegree = geodesy.EarthRadius * math.Pi / 180

// Direction names the compass point in which the bulk of the track lies
// relative to its start. The offsets of every point from the start are
// summed, so a circular route is classified too.
func Direction(points []Point) string {
	if len(points) < 2 {
		return ""
	}
	start := points[0]
	scale := math.Cos(start.Lat * math.Pi / 180)
	var dE, dN float64
	for _, p := range points[1:] {
		dE += (p.Lon - start.Lon) * scale * metresPerDegree
		dN += (p.Lat - start.Lat) * metresPerDegree
	}
	return compassPoint(dE, dN)
}

func compassPoint(dE, dN float64) string {
	if dN == 0 {
		if dE >= 0 {
			return "east"
		}
		return "west"
	}
	t := math.Abs(dE) / math.Abs(dN)
	if dN > 0 {
		if t < math.Tan(math.Pi/8) {
			return "north"
		}
		if t < math.Tan(3*math.Pi/8) {
			if dE > 0 {
				return "north-east"
			}
			return "north-west"
		}
		if dE > 0 {
			return "east"
		}
		return "west"
	}
	if t < math.Tan(math.Pi/8) {
		return "south"
	}
	if t < math.Tan(3*math.Pi/8) {
		if dE > 0 {
			return "south-east"
		}
		return "south-west"
	}
	if dE > 0 {
		return "east"
	}
	return "west"
}

// ClimbDescent sums the rises and falls between consecutive points.
func ClimbDescent(points []Point) (climb, descent float64) {
	for i := 1; i < len(points); i++ {
		d := points[i].Alt - points[i-1].Alt
		if d > 0 {
			climb += d
		} else {
			descent -= d
		}
	}
	return climb, descent
}
