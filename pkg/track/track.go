package track

import (
	"sort"

	"github.com/ray1729/gpx-journey/pkg/geodesy"
	"github.com/ray1729/gpx-journey/pkg/gpxread"
)

type Point struct {
	Lon  float64
	Lat  float64
	Alt  float64
	Time int64
}

func FromRawFix(f gpxread.RawFix) Point {
	return Point{Lon: f.Lon(), Lat: f.Lat(), Alt: f.Alt(), Time: f.Timestamp}
}

// DistanceTo returns the haversine distance in metres.
func (p Point) DistanceTo(q Point) float64 {
	return geodesy.Distance(p.Lat, p.Lon, q.Lat, q.Lon)
}

type Processed struct {
	Points []Point
	Stops  []Stop
}

// Process orders the fixes by time, converts them to points and detects
// stops. Fixes sharing a timestamp keep their document order.
func Process(fixes []gpxread.RawFix, cfg StopConfig) *Processed {
	if len(fixes) == 0 {
		return &Processed{}
	}
	sorted := make([]gpxread.RawFix, len(fixes))
	copy(sorted, fixes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	points := make([]Point, len(sorted))
	for i, f := range sorted {
		points[i] = FromRawFix(f)
	}
	return &Processed{Points: points, Stops: DetectStops(points, cfg)}
}

// Coordinates returns [lon, lat, alt] triples in track order.
func (p *Processed) Coordinates() [][3]float64 {
	return Coordinates(p.Points)
}

func Coordinates(points []Point) [][3]float64 {
	coords := make([][3]float64, len(points))
	for i, p := range points {
		coords[i] = [3]float64{p.Lon, p.Lat, p.Alt}
	}
	return coords
}

// PathDistance sums the edge distances of a point sequence.
func PathDistance(points []Point) float64 {
	var d float64
	for i := 1; i < len(points); i++ {
		d += points[i-1].DistanceTo(points[i])
	}
	return d
}
