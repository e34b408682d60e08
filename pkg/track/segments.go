package track

type Kind string

const (
	KindMove Kind = "move"
	KindStop Kind = "stop"
)

type SegmentStats struct {
	StartTime    int64
	EndTime      int64
	Duration     int64
	Distance     float64
	AvgSpeedKmph float64
}

// Segment is an inclusive index range of the source points. Adjacent
// segments share their boundary point. Stats is nil for segments with
// fewer than two points.
type Segment struct {
	StartIndex int
	EndIndex   int
	Points     []Point
	Kind       Kind
	Stats      *SegmentStats
}

func newSegment(points []Point, start, end int, kind Kind) Segment {
	s := Segment{
		StartIndex: start,
		EndIndex:   end,
		Points:     points[start : end+1 : end+1],
		Kind:       kind,
	}
	s.Stats = segmentStats(s.Points)
	return s
}

func segmentStats(points []Point) *SegmentStats {
	if len(points) < 2 {
		return nil
	}
	st := &SegmentStats{
		StartTime: points[0].Time,
		EndTime:   points[len(points)-1].Time,
		Distance:  PathDistance(points),
	}
	st.Duration = st.EndTime - st.StartTime
	if st.Duration > 0 {
		st.AvgSpeedKmph = st.Distance / float64(st.Duration) * 3.6
	}
	return st
}

// Split partitions the points into alternating move and stop segments.
// The stops must be ordered and must not overlap.
func Split(points []Point, stops []Stop) []Segment {
	if len(points) < 2 {
		return nil
	}
	last := len(points) - 1
	if len(stops) == 0 {
		return []Segment{newSegment(points, 0, last, KindMove)}
	}
	var segments []Segment
	cursor := 0
	for _, stop := range stops {
		if stop.StartIndex > cursor {
			segments = append(segments, newSegment(points, cursor, stop.StartIndex, KindMove))
		}
		segments = append(segments, newSegment(points, stop.StartIndex, stop.EndIndex, KindStop))
		cursor = stop.EndIndex
	}
	if cursor < last {
		segments = append(segments, newSegment(points, cursor, last, KindMove))
	}
	return segments
}

// AnyVisible reports whether at least one flag is set.
func AnyVisible(visible []bool) bool {
	for _, v := range visible {
		if v {
			return true
		}
	}
	return false
}

// Contributes reports whether segment i is shown under the given flags:
// when nothing is selected every segment is shown.
func Contributes(visible []bool, i int) bool {
	if !AnyVisible(visible) {
		return true
	}
	return i < len(visible) && visible[i]
}

// VisiblePoints concatenates the points of the contributing segments. A
// segment whose first point has the same timestamp as the last point
// already collected is joined without repeating that point.
func VisiblePoints(segments []Segment, visible []bool) []Point {
	selected := AnyVisible(visible)
	var pts []Point
	for i, seg := range segments {
		if selected && (i >= len(visible) || !visible[i]) {
			continue
		}
		if len(pts) > 0 && len(seg.Points) > 0 && pts[len(pts)-1].Time == seg.Points[0].Time {
			pts = append(pts, seg.Points[1:]...)
		} else {
			pts = append(pts, seg.Points...)
		}
	}
	return pts
}
