package viewer

import (
	"log"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/ray1729/gpx-journey/pkg/colorize"
	"github.com/ray1729/gpx-journey/pkg/gpxread"
	"github.com/ray1729/gpx-journey/pkg/gridref"
	"github.com/ray1729/gpx-journey/pkg/layers"
	"github.com/ray1729/gpx-journey/pkg/panel"
	"github.com/ray1729/gpx-journey/pkg/track"
)

// ViewOptions control how a track is presented.
type ViewOptions struct {
	Colors   colorize.Options
	Zoom     float64
	Location *time.Location
	// Add National Grid references to stop markers
	NationalGrid bool
	// Colour the visible edges against the speed range of the whole
	// track rather than each segment's own
	GlobalSpeedRange bool
	// Indices into the visible points of a span to describe, if any
	Span *[2]int
}

func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		Colors:   colorize.DefaultOptions(),
		Zoom:     15,
		Location: time.UTC,
	}
}

// Model is everything a client needs to draw a track.
type Model struct {
	Empty    bool                       `json:"empty"`
	Warning  string                     `json:"warning,omitempty"`
	Metadata *gpxread.Metadata          `json:"metadata,omitempty"`
	Summary  track.Summary              `json:"summary"`
	Skipped  []string                   `json:"skipped,omitempty"`
	Bounds   *[4]float64                `json:"bounds,omitempty"`
	Line     *geojson.Feature           `json:"line,omitempty"`
	Edges    *geojson.FeatureCollection `json:"edges"`
	Stops    *geojson.FeatureCollection `json:"stops"`
	Arrows   *geojson.FeatureCollection `json:"arrows"`
	Bridges  *geojson.FeatureCollection `json:"bridges"`
	Segments []panel.SegmentItem        `json:"segments"`
	Progress *panel.Progress            `json:"progress"`
	Range    *panel.Range               `json:"range,omitempty"`
}

// NewModel lays out t for display with the segments flagged in visible
// selected.
func NewModel(t *Track, visible []bool, opts ViewOptions) *Model {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	if opts.GlobalSpeedRange && opts.Colors.Mode == colorize.ModeSpeed {
		r := opts.Colors.SpeedRange(t.Points)
		opts.Colors.Range = &r
	}
	m := &Model{
		Empty:    t.Empty(),
		Warning:  t.Warning(),
		Metadata: t.Metadata,
		Summary:  t.Summary,
		Segments: panel.SegmentList(t.Segments, visible, loc),
		Edges:    layers.SegmentEdgeFeatures(t.Segments, visible, opts.Colors),
		Stops:    layers.StopMarkers(t.Stops),
		Arrows:   layers.SegmentArrows(t.Segments, visible, opts.Zoom),
		Bridges:  layers.BridgeFeatures(layers.Bridges(t.Segments, visible)),
	}
	for _, s := range t.Skipped {
		m.Skipped = append(m.Skipped, s.String())
	}
	if m.Segments == nil {
		m.Segments = []panel.SegmentItem{}
	}
	if !t.Empty() {
		b := layers.Bounds(t.Points)
		m.Bounds = &b
	}
	m.Line = layers.SegmentLines(t.Segments, visible)
	points := track.VisiblePoints(t.Segments, visible)
	m.Progress = panel.NewProgress(points, opts.Colors, loc)
	if opts.Span != nil {
		if r, ok := panel.NewRange(points, opts.Span[0], opts.Span[1], loc); ok {
			m.Range = &r
		}
	}
	if opts.NationalGrid {
		addGridRefs(m.Stops, t.Stops)
	}
	return m
}

func addGridRefs(fc *geojson.FeatureCollection, stops []track.Stop) {
	for i, s := range stops {
		ref, err := gridref.Convert(s.CenterLat, s.CenterLon)
		if err != nil {
			log.Printf("No grid reference for stop %d: %v", i, err)
			continue
		}
		fc.Features[i].Properties["gridRef"] = ref.String()
	}
}
