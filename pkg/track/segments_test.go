package track

import (
	"reflect"
	"testing"
)

func kinds(segs []Segment) []Kind {
	var ks []Kind
	for _, s := range segs {
		ks = append(ks, s.Kind)
	}
	return ks
}

func TestSplitJourney(t *testing.T) {
	pts := journeyPoints()
	segs := Split(pts, DetectStops(pts, DefaultStopConfig()))
	if got, want := kinds(segs), []Kind{KindMove, KindStop, KindMove}; !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	bounds := [][2]int{{0, 8}, {8, 13}, {13, 19}}
	for i, s := range segs {
		if s.StartIndex != bounds[i][0] || s.EndIndex != bounds[i][1] {
			t.Errorf("segment %d covers [%d, %d], want %v", i, s.StartIndex, s.EndIndex, bounds[i])
		}
		if len(s.Points) != s.EndIndex-s.StartIndex+1 {
			t.Errorf("segment %d has %d points", i, len(s.Points))
		}
	}
	stop := segs[1].Stats
	if stop == nil || stop.AvgSpeedKmph >= 3 || stop.Duration != 90 {
		t.Errorf("unexpected stop stats %+v", stop)
	}
	move := segs[0].Stats
	if move.Duration != 288 || move.AvgSpeedKmph < 10 {
		t.Errorf("unexpected move stats %+v", move)
	}
}

func TestSplitContinuity(t *testing.T) {
	pts := journeyPoints()
	tests := []struct {
		name  string
		stops []Stop
	}{
		{"no stops", nil},
		{"detected", DetectStops(pts, DefaultStopConfig())},
		{"stop at start", []Stop{{StartIndex: 0, EndIndex: 4}}},
		{"stop at end", []Stop{{StartIndex: 15, EndIndex: 19}}},
		{"adjacent stops", []Stop{{StartIndex: 2, EndIndex: 5}, {StartIndex: 6, EndIndex: 9}}},
		{"whole track", []Stop{{StartIndex: 0, EndIndex: 19}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Split(pts, tt.stops)
			for i := 1; i < len(segs); i++ {
				prev := segs[i-1].Points
				if prev[len(prev)-1] != segs[i].Points[0] {
					t.Errorf("segments %d and %d do not share a boundary point", i-1, i)
				}
			}
			var joined []Point
			for _, s := range segs {
				if len(joined) > 0 {
					joined = append(joined, s.Points[1:]...)
				} else {
					joined = append(joined, s.Points...)
				}
			}
			if !reflect.DeepEqual(joined, pts) {
				t.Errorf("concatenated segments do not reproduce the track")
			}
		})
	}
}

func TestSplitEdgeCases(t *testing.T) {
	pts := journeyPoints()
	if segs := Split(pts[:1], nil); segs != nil {
		t.Errorf("expected nil for a single point, got %+v", segs)
	}
	segs := Split(pts, nil)
	if len(segs) != 1 || segs[0].Kind != KindMove || segs[0].StartIndex != 0 || segs[0].EndIndex != 19 {
		t.Errorf("expected one move segment, got %+v", segs)
	}
	segs = Split(pts, []Stop{{StartIndex: 0, EndIndex: 5}})
	if got, want := kinds(segs), []Kind{KindStop, KindMove}; !reflect.DeepEqual(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}
	segs = Split(pts, []Stop{{StartIndex: 10, EndIndex: 19}})
	if got, want := kinds(segs), []Kind{KindMove, KindStop}; !reflect.DeepEqual(got, want) {
		t.Errorf("kinds = %v, want %v", got, want)
	}
}

func TestSplitSinglePointSegmentHasNoStats(t *testing.T) {
	pts := journeyPoints()
	segs := Split(pts, []Stop{{StartIndex: 3, EndIndex: 3}})
	if len(segs) != 3 {
		t.Fatalf("got %d segments", len(segs))
	}
	if segs[1].Stats != nil {
		t.Errorf("single point segment has stats %+v", segs[1].Stats)
	}
	if segs[0].Stats == nil || segs[2].Stats == nil {
		t.Errorf("multi point segments are missing stats")
	}
}

func TestSplitZeroDurationSegment(t *testing.T) {
	pts := []Point{{Lat: 1, Lon: 1, Time: 10}, {Lat: 1.001, Lon: 1, Time: 10}}
	segs := Split(pts, nil)
	if segs[0].Stats.Duration != 0 || segs[0].Stats.AvgSpeedKmph != 0 || segs[0].Stats.Distance == 0 {
		t.Errorf("unexpected stats %+v", segs[0].Stats)
	}
}

func TestSplitSegmentsDoNotAlias(t *testing.T) {
	pts := journeyPoints()
	segs := Split(pts, DetectStops(pts, DefaultStopConfig()))
	_ = append(segs[0].Points, Point{Lat: -1})
	if pts[9].Lat == -1 {
		t.Error("appending to a segment overwrote the source points")
	}
}

func TestVisiblePoints(t *testing.T) {
	pts := journeyPoints()
	segs := Split(pts, DetectStops(pts, DefaultStopConfig()))

	all := VisiblePoints(segs, []bool{false, false, false})
	if !reflect.DeepEqual(all, pts) {
		t.Errorf("nothing selected should show the whole track, got %d points", len(all))
	}
	if got := VisiblePoints(segs, nil); !reflect.DeepEqual(got, pts) {
		t.Errorf("nil flags should show the whole track, got %d points", len(got))
	}

	stop := VisiblePoints(segs, []bool{false, true, false})
	if !reflect.DeepEqual(stop, pts[8:14]) {
		t.Errorf("selected stop segment gave %d points", len(stop))
	}

	joined := VisiblePoints(segs, []bool{true, true, false})
	if !reflect.DeepEqual(joined, pts[0:14]) {
		t.Errorf("adjacent segments should join without a duplicate, got %d points", len(joined))
	}

	gap := VisiblePoints(segs, []bool{true, false, true})
	if len(gap) != 9+7 {
		t.Errorf("non-adjacent segments gave %d points, want 16", len(gap))
	}
}

func TestContributes(t *testing.T) {
	if !Contributes([]bool{false, false}, 1) {
		t.Error("nothing selected should show every segment")
	}
	if Contributes([]bool{true, false}, 1) {
		t.Error("unselected segment shown while another is selected")
	}
	if Contributes([]bool{true}, 3) {
		t.Error("segment beyond the flags shown while another is selected")
	}
}
