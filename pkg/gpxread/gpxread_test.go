package gpxread

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
<metadata><name>Morning ride</name><link href="https://example.org/ride/1"></link></metadata>
<trk><name>Track</name><trkseg>
`

const footer = `</trkseg></trk></gpx>`

func gpxDoc(points ...string) string {
	return header + strings.Join(points, "\n") + footer
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"unclosed element", `<gpx><trk><trkseg><trkpt lat="1" lon="2">`},
		{"mismatched tags", `<gpx><trk></gpx></trk>`},
		{"not xml", `lat,lon,time`},
		{"two root elements", `<gpx><trk><trkseg><trkpt lat="1" lon="2"><time>2024-05-01T08:00:00Z</time></trkpt></trkseg></trk></gpx><gpx/>`},
		{"text after root", `<gpx><trk><trkseg><trkpt lat="1" lon="2"><time>2024-05-01T08:00:00Z</time></trkpt></trkseg></trk></gpx>trailing garbage`},
		{"text before root", `garbage <gpx><trk><trkseg><trkpt lat="1" lon="2"><time>2024-05-01T08:00:00Z</time></trkpt></trkseg></trk></gpx>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Read(strings.NewReader(tt.input))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if doc != nil {
				t.Errorf("expected nil document, got %+v", doc)
			}
		})
	}
}

func TestReadWhitespaceAroundRoot(t *testing.T) {
	input := "<?xml version=\"1.0\"?>\n<!-- exported -->\n" +
		`<gpx><trk><trkseg><trkpt lat="1" lon="2"><time>2024-05-01T08:00:00Z</time></trkpt></trkseg></trk></gpx>` + "\n\n"
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fixes) != 1 {
		t.Errorf("got %d fixes, want 1", len(doc.Fixes))
	}
}

func TestReadNestedTrackpoints(t *testing.T) {
	tests := []struct {
		name        string
		point       string
		wantFixes   []int64
		wantSkipped []int
	}{
		{
			"outer without time",
			`<trkpt lat="52.2" lon="0.12"><trkpt lat="52.3" lon="0.13"><time>2024-05-01T08:00:00Z</time></trkpt></trkpt>`,
			[]int64{1714550400},
			[]int{1},
		},
		{
			"both timed",
			`<trkpt lat="52.2" lon="0.12"><trkpt lat="52.3" lon="0.13"><time>2024-05-01T08:00:00Z</time></trkpt><time>2024-05-01T08:00:10Z</time></trkpt>`,
			[]int64{1714550410, 1714550400},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Read(strings.NewReader(gpxDoc(tt.point)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.TrackPoints != 2 {
				t.Errorf("TrackPoints = %d, want 2", doc.TrackPoints)
			}
			if len(doc.Fixes) != len(tt.wantFixes) {
				t.Fatalf("got %d fixes, want %d", len(doc.Fixes), len(tt.wantFixes))
			}
			for i, ts := range tt.wantFixes {
				if doc.Fixes[i].Timestamp != ts {
					t.Errorf("fix %d at %d, want %d", i, doc.Fixes[i].Timestamp, ts)
				}
			}
			if len(doc.Skipped) != len(tt.wantSkipped) {
				t.Fatalf("skipped %v, want indices %v", doc.Skipped, tt.wantSkipped)
			}
			for i, idx := range tt.wantSkipped {
				if doc.Skipped[i].Index != idx {
					t.Errorf("skipped %d has index %d, want %d", i, doc.Skipped[i].Index, idx)
				}
			}
		})
	}
}

func TestReadNoTrackpoints(t *testing.T) {
	doc, err := Read(strings.NewReader(gpxDoc()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Empty() || doc.TrackPoints != 0 || len(doc.Skipped) != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestReadSkipsDefectivePoints(t *testing.T) {
	input := gpxDoc(
		`<trkpt lat="52.20000" lon="0.12000"><ele>10.5</ele><time>2024-05-01T08:00:00Z</time></trkpt>`,
		`<trkpt lon="0.12000"><time>2024-05-01T08:00:10Z</time></trkpt>`,
		`<trkpt lat="abc" lon="0.12000"><time>2024-05-01T08:00:20Z</time></trkpt>`,
		`<trkpt lat="52.20010" lon="0.12000"><ele>11</ele></trkpt>`,
		`<trkpt lat="52.20020" lon="0.12000"><time>yesterday</time></trkpt>`,
		`<trkpt lat="95" lon="0.12000"><time>2024-05-01T08:00:40Z</time></trkpt>`,
		`<trkpt lat="52.20030" lon="0.12000"><ele>n/a</ele><time>2024-05-01T08:00:50Z</time></trkpt>`,
	)
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.TrackPoints != 7 {
		t.Errorf("TrackPoints = %d, want 7", doc.TrackPoints)
	}
	if len(doc.Fixes) != 2 {
		t.Fatalf("got %d fixes, want 2", len(doc.Fixes))
	}
	var skippedIdx []int
	for _, s := range doc.Skipped {
		skippedIdx = append(skippedIdx, s.Index)
	}
	want := []int{2, 3, 4, 5, 6}
	if len(skippedIdx) != len(want) {
		t.Fatalf("skipped %v, want %v", skippedIdx, want)
	}
	for i := range want {
		if skippedIdx[i] != want[i] {
			t.Errorf("skipped %v, want %v", skippedIdx, want)
			break
		}
	}
	first := doc.Fixes[0]
	if first.Lat1e5 != 5220000 || first.Lon1e5 != 12000 || first.AltDm != 105 || first.Timestamp != 1714550400 {
		t.Errorf("unexpected first fix %+v", first)
	}
	if doc.Fixes[1].AltDm != 0 {
		t.Errorf("unparsable elevation should default to 0, got %d", doc.Fixes[1].AltDm)
	}
}

func TestReadAllSkippedIsEmptyNotError(t *testing.T) {
	input := gpxDoc(
		`<trkpt lat="52.2" lon="0.12"></trkpt>`,
		`<trkpt lat="52.3" lon="0.13"><time></time></trkpt>`,
	)
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doc.Empty() || len(doc.Skipped) != 2 {
		t.Errorf("expected two skipped points and no fixes, got %+v", doc)
	}
}

func TestReadPreservesDocumentOrder(t *testing.T) {
	input := gpxDoc(
		`<trkpt lat="1" lon="1"><time>2024-05-01T08:00:30Z</time></trkpt>`,
		`<trkpt lat="2" lon="2"><time>2024-05-01T08:00:10Z</time></trkpt>`,
		`<trkpt lat="3" lon="3"><time>2024-05-01T08:00:20Z</time></trkpt>`,
	)
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, f := range doc.Fixes {
		if f.Lat1e5 != int64(i+1)*1e5 {
			t.Errorf("fix %d has latitude %d, document order not preserved", i, f.Lat1e5)
		}
	}
}

func TestReadTrackpointsOutsideTrkseg(t *testing.T) {
	input := `<gpx><trk><trkpt lat="1" lon="1"><time>2024-05-01T08:00:00Z</time></trkpt></trk>
<trk><trkseg><trkpt lat="2" lon="2"><time>2024-05-01T08:00:05Z</time></trkpt></trkseg></trk></gpx>`
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fixes) != 2 {
		t.Errorf("got %d fixes, want 2", len(doc.Fixes))
	}
}

func TestReadDeclaredCharset(t *testing.T) {
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<gpx><trk><name>Caf\xe9</name><trkseg>" +
		`<trkpt lat="48.85" lon="2.35"><time>2024-05-01T08:00:00Z</time></trkpt>` +
		"</trkseg></trk></gpx>"
	doc, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fixes) != 1 {
		t.Errorf("got %d fixes, want 1", len(doc.Fixes))
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"2024-05-01T08:00:00Z", 1714550400, true},
		{"2024-05-01T08:00:00.999Z", 1714550400, true},
		{"2024-05-01T10:00:00+02:00", 1714550400, true},
		{"2024-05-01T08:00:00", 1714550400, true},
		{"2024-05-01 08:00:00", 1714550400, true},
		{" 2024-05-01T08:00:00Z\n", 1714550400, true},
		{"1969-12-31T23:59:59.5Z", -1, true},
		{"", 0, false},
		{"08:00", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseTime(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseTime(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestScaleRoundTrip(t *testing.T) {
	values := []struct{ lat, lon, ele float64 }{
		{52.20531, 0.12181, 12.3},
		{-33.86882, 151.20929, -4.7},
		{0, 0, 0},
		{89.99999, -179.99999, 8848.9},
		{51.477928, -0.001545, 46.06},
	}
	for _, v := range values {
		f := NewRawFix(0, v.lat, v.lon, v.ele)
		if math.Abs(f.Lat()-v.lat) > 1e-5 || math.Abs(f.Lon()-v.lon) > 1e-5 {
			t.Errorf("coordinate round trip of (%f, %f) gave (%f, %f)", v.lat, v.lon, f.Lat(), f.Lon())
		}
		if math.Abs(f.Alt()-v.ele) > 1e-1 {
			t.Errorf("elevation round trip of %f gave %f", v.ele, f.Alt())
		}
		again := NewRawFix(0, f.Lat(), f.Lon(), f.Alt())
		if again != f {
			t.Errorf("rescaling is not stable: %+v vs %+v", again, f)
		}
	}
}

func TestReadMetadata(t *testing.T) {
	input := gpxDoc(`<trkpt lat="52.2" lon="0.12"><time>2024-05-01T08:00:00Z</time></trkpt>`)
	m, err := ReadMetadata([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "Morning ride" || m.Creator != "test" || m.Link != "https://example.org/ride/1" {
		t.Errorf("unexpected metadata %+v", m)
	}
	if m.Tracks != 1 || m.Segments != 1 {
		t.Errorf("got %d tracks and %d segments, want 1 and 1", m.Tracks, m.Segments)
	}
}

func TestReadMetadataTime(t *testing.T) {
	point := `<trkpt lat="52.2" lon="0.12"><time>2024-05-01T08:00:00Z</time></trkpt>`
	m, err := ReadMetadata([]byte(gpxDoc(point)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Time != nil {
		t.Errorf("expected no time, got %v", m.Time)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), `"Time"`) {
		t.Errorf("absent time was encoded: %s", b)
	}

	timed := strings.Replace(gpxDoc(point), "<metadata>", "<metadata><time>2024-05-01T07:59:00Z</time>", 1)
	m, err = ReadMetadata([]byte(timed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Time == nil || m.Time.Unix() != 1714550340 {
		t.Errorf("got time %v, want 2024-05-01T07:59:00Z", m.Time)
	}
}
