package layers

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/ray1729/gpx-journey/pkg/geodesy"
	"github.com/ray1729/gpx-journey/pkg/track"
)

const (
	arrowBaseZoom     = 15
	arrowBaseInterval = 250.0
	minArrowInterval  = 30.0
	maxArrowInterval  = 2000000.0
)

// ArrowInterval returns the spacing in metres between direction arrows at
// the given map zoom: 250 m at zoom 15, doubling for each level out.
func ArrowInterval(zoom float64) float64 {
	d := arrowBaseInterval * math.Pow(2, arrowBaseZoom-zoom)
	return math.Max(minArrowInterval, math.Min(maxArrowInterval, d))
}

func arrow(lon, lat, bearing float64) *geojson.Feature {
	return &geojson.Feature{
		Geometry:   geom.NewPointFlat(geom.XY, []float64{lon, lat}),
		Properties: map[string]interface{}{"bearing": bearing},
	}
}

// Arrows places a marker at the start of the track and then one every
// ArrowInterval(zoom) metres along it, each rotated to the bearing of the
// edge it lies on. Edges of zero length are ignored.
func Arrows(points []track.Point, zoom float64) *geojson.FeatureCollection {
	fc := newCollection()
	if len(points) < 2 {
		return fc
	}
	interval := ArrowInterval(zoom)
	p0, p1 := points[0], points[1]
	fc.Features = append(fc.Features, arrow(p0.Lon, p0.Lat, geodesy.Bearing(p0.Lat, p0.Lon, p1.Lat, p1.Lon)))

	var carried float64
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if a.Lon == b.Lon && a.Lat == b.Lat {
			continue
		}
		d := a.DistanceTo(b)
		total := carried + d
		if total < interval {
			carried = total
			continue
		}
		bearing := geodesy.Bearing(a.Lat, a.Lon, b.Lat, b.Lon)
		n := int(math.Floor(total / interval))
		for j := 1; j <= n; j++ {
			t := (interval*float64(j) - carried) / d
			fc.Features = append(fc.Features, arrow(a.Lon+(b.Lon-a.Lon)*t, a.Lat+(b.Lat-a.Lat)*t, bearing))
		}
		carried = math.Mod(total, interval)
	}
	return fc
}

// SegmentArrows runs Arrows over each contributing segment separately.
func SegmentArrows(segments []track.Segment, visible []bool, zoom float64) *geojson.FeatureCollection {
	fc := newCollection()
	for i, seg := range segments {
		if !track.Contributes(visible, i) || len(seg.Points) < 2 {
			continue
		}
		fc.Features = append(fc.Features, Arrows(seg.Points, zoom).Features...)
	}
	return fc
}
