// Package layers builds the GeoJSON sources drawn by a map client: the
// track line, coloured edges, stop markers, direction arrows and the
// bridges between selected segments.
package layers

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/ray1729/gpx-journey/pkg/colorize"
	"github.com/ray1729/gpx-journey/pkg/track"
)

func flatXYZ(points []track.Point) []float64 {
	flat := make([]float64, 0, 3*len(points))
	for _, p := range points {
		flat = append(flat, p.Lon, p.Lat, p.Alt)
	}
	return flat
}

func newCollection() *geojson.FeatureCollection {
	return &geojson.FeatureCollection{Features: []*geojson.Feature{}}
}

// TrackLine returns the whole track as a single LineString, or nil when
// there are fewer than two points.
func TrackLine(points []track.Point) *geojson.Feature {
	if len(points) < 2 {
		return nil
	}
	ls := geom.NewLineStringFlat(geom.XYZ, flatXYZ(points))
	return &geojson.Feature{
		BBox:       ls.Bounds(),
		Geometry:   ls,
		Properties: map[string]interface{}{"points": len(points)},
	}
}

// EdgeFeatures returns one two-vertex LineString per edge carrying the
// colour chosen by opts.
func EdgeFeatures(points []track.Point, opts colorize.Options) *geojson.FeatureCollection {
	fc := newCollection()
	colors := colorize.EdgeColors(points, opts)
	for i, c := range colors {
		edge := geom.NewLineStringFlat(geom.XYZ, flatXYZ(points[i:i+2]))
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   edge,
			Properties: map[string]interface{}{"color": c},
		})
	}
	return fc
}

// SegmentEdgeFeatures colours each contributing segment on its own scale,
// unless opts.Range fixes a common one, and concatenates the edges.
func SegmentEdgeFeatures(segments []track.Segment, visible []bool, opts colorize.Options) *geojson.FeatureCollection {
	fc := newCollection()
	for i, seg := range segments {
		if !track.Contributes(visible, i) || len(seg.Points) < 2 {
			continue
		}
		fc.Features = append(fc.Features, EdgeFeatures(seg.Points, opts).Features...)
	}
	return fc
}

// SegmentLines returns the contributing segments with more than one
// point as a MultiLineString, or nil when there are none.
func SegmentLines(segments []track.Segment, visible []bool) *geojson.Feature {
	var flat []float64
	var ends []int
	for i, seg := range segments {
		if !track.Contributes(visible, i) || len(seg.Points) < 2 {
			continue
		}
		flat = append(flat, flatXYZ(seg.Points)...)
		ends = append(ends, len(flat))
	}
	if len(ends) == 0 {
		return nil
	}
	mls := geom.NewMultiLineStringFlat(geom.XYZ, flat, ends)
	return &geojson.Feature{
		BBox:       mls.Bounds(),
		Geometry:   mls,
		Properties: map[string]interface{}{"segments": len(ends)},
	}
}

func stopDurationText(seconds int64) string {
	return fmt.Sprintf("%d min %d s", seconds/60, seconds%60)
}

// StopMarkers returns a Point at the centre of each stop, coloured by its
// duration relative to the other stops.
func StopMarkers(stops []track.Stop) *geojson.FeatureCollection {
	fc := newCollection()
	colors := colorize.DurationColors(stops)
	for i, s := range stops {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       fmt.Sprintf("stop-%d", i),
			Geometry: geom.NewPointFlat(geom.XY, []float64{s.CenterLon, s.CenterLat}),
			Properties: map[string]interface{}{
				"startTime":   s.StartTime,
				"endTime":     s.EndTime,
				"durationSec": s.Duration,
				"duration":    stopDurationText(s.Duration),
				"color":       colors[i],
			},
		})
	}
	return fc
}

// Bridge joins the end of one contributing segment to the start of the
// next when they are at different positions.
type Bridge struct {
	From track.Point
	To   track.Point
}

func Bridges(segments []track.Segment, visible []bool) []Bridge {
	var bridges []Bridge
	var last *track.Point
	for i, seg := range segments {
		if !track.Contributes(visible, i) || len(seg.Points) == 0 {
			continue
		}
		first := seg.Points[0]
		if last != nil && (last.Lon != first.Lon || last.Lat != first.Lat) {
			bridges = append(bridges, Bridge{From: *last, To: first})
		}
		end := seg.Points[len(seg.Points)-1]
		last = &end
	}
	return bridges
}

func BridgeFeatures(bridges []Bridge) *geojson.FeatureCollection {
	fc := newCollection()
	for _, b := range bridges {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewLineStringFlat(geom.XYZ, flatXYZ([]track.Point{b.From, b.To})),
			Properties: map[string]interface{}{"bridge": true},
		})
	}
	return fc
}

// Bounds returns [minLon, minLat, maxLon, maxLat] of the points, for
// fitting the map view.
func Bounds(points []track.Point) [4]float64 {
	if len(points) == 0 {
		return [4]float64{}
	}
	b := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		b[0] = math.Min(b[0], p.Lon)
		b[1] = math.Min(b[1], p.Lat)
		b[2] = math.Max(b[2], p.Lon)
		b[3] = math.Max(b[3], p.Lat)
	}
	return b
}
