// Package locate finds the track point nearest to a map position.
package locate

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/ray1729/gpx-journey/pkg/track"
)

// Number of planar candidates refined by great-circle distance.
const candidates = 8

const tolerance = 1e-9

type indexedPoint struct {
	Index int
	Point track.Point
	at    rtreego.Point
}

func (p *indexedPoint) Bounds() rtreego.Rect {
	return p.at.ToRect(tolerance)
}

// Index is an R-tree over the points of a track. Coordinates are
// projected so that a degree of longitude and of latitude cover about the
// same ground distance near the track, which keeps the planar nearest
// neighbours close to the true ones.
type Index struct {
	rt     *rtreego.Rtree
	points []track.Point
	scale  float64
}

func project(lat, lon, scale float64) rtreego.Point {
	return rtreego.Point{lon * scale, lat}
}

func NewIndex(points []track.Point) *Index {
	var lat float64
	for _, p := range points {
		lat += p.Lat
	}
	if len(points) > 0 {
		lat /= float64(len(points))
	}
	ix := &Index{points: points, scale: math.Cos(lat * math.Pi / 180)}
	objs := make([]rtreego.Spatial, len(points))
	for i, p := range points {
		objs[i] = &indexedPoint{Index: i, Point: p, at: project(p.Lat, p.Lon, ix.scale)}
	}
	ix.rt = rtreego.NewTree(2, 25, 50, objs...)
	return ix
}

func (ix *Index) Len() int {
	return len(ix.points)
}

// Match is a track point together with its distance in metres from the
// query position.
type Match struct {
	Index    int
	Point    track.Point
	Distance float64
}

// Nearest returns the track point closest to (lat, lon). It reports false
// for an empty index.
func (ix *Index) Nearest(lat, lon float64) (Match, bool) {
	if len(ix.points) == 0 {
		return Match{}, false
	}
	query := track.Point{Lat: lat, Lon: lon}
	best := Match{Index: -1, Distance: math.Inf(1)}
	for _, obj := range ix.rt.NearestNeighbors(candidates, project(lat, lon, ix.scale)) {
		p, ok := obj.(*indexedPoint)
		if !ok {
			continue
		}
		d := query.DistanceTo(p.Point)
		if d < best.Distance || (d == best.Distance && p.Index < best.Index) {
			best = Match{Index: p.Index, Point: p.Point, Distance: d}
		}
	}
	return best, best.Index >= 0
}

// Within returns the indices of the track points within radius metres of
// (lat, lon), in track order.
func (ix *Index) Within(lat, lon, radius float64) []int {
	if len(ix.points) == 0 || radius <= 0 {
		return nil
	}
	// one degree of latitude is never less than 110 km
	dLat := radius / 110000
	dLon := dLat / math.Max(math.Cos(lat*math.Pi/180), 0.01)
	bb, err := rtreego.NewRectFromPoints(
		project(lat-dLat, lon-dLon, ix.scale),
		project(lat+dLat, lon+dLon, ix.scale),
	)
	if err != nil {
		return nil
	}
	query := track.Point{Lat: lat, Lon: lon}
	var found []int
	for _, obj := range ix.rt.SearchIntersect(bb) {
		p := obj.(*indexedPoint)
		if query.DistanceTo(p.Point) <= radius {
			found = append(found, p.Index)
		}
	}
	sort.Ints(found)
	return found
}
