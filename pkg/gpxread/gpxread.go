package gpxread

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

var ErrMalformed = errors.New("malformed GPX")

// RawFix is a trackpoint as read from the document, scaled to fixed-point
// integers: coordinates in units of 1e-5 degrees and altitude in decimetres.
type RawFix struct {
	Timestamp int64
	Lat1e5    int64
	Lon1e5    int64
	AltDm     int64
}

func NewRawFix(timestamp int64, lat, lon, ele float64) RawFix {
	return RawFix{
		Timestamp: timestamp,
		Lat1e5:    roundHalfUp(lat * 1e5),
		Lon1e5:    roundHalfUp(lon * 1e5),
		AltDm:     roundHalfUp(ele * 10),
	}
}

func (f RawFix) Lat() float64 {
	return float64(f.Lat1e5) / 1e5
}

func (f RawFix) Lon() float64 {
	return float64(f.Lon1e5) / 1e5
}

func (f RawFix) Alt() float64 {
	return float64(f.AltDm) / 10
}

func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}

// Skipped records a trackpoint that was dropped while reading.
type Skipped struct {
	// 1-based position of the trkpt element in the document
	Index  int
	Reason string
}

func (s Skipped) String() string {
	return fmt.Sprintf("trackpoint %d: %s", s.Index, s.Reason)
}

type Document struct {
	Fixes       []RawFix
	Skipped     []Skipped
	TrackPoints int
}

// Empty reports whether the document holds no usable fixes.
func (d *Document) Empty() bool {
	return len(d.Fixes) == 0
}

type trkpt struct {
	Lat  string
	Lon  string
	Ele  string
	Time string

	// element depth of the trkpt tag, and which children have been read
	depth   int
	hasEle  bool
	hasTime bool
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

func parseCoord(s string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, false
	}
	return v, true
}

func (p *trkpt) fix() (RawFix, string) {
	if strings.TrimSpace(p.Lat) == "" || strings.TrimSpace(p.Lon) == "" {
		return RawFix{}, "missing lat/lon attributes"
	}
	lat, ok := parseCoord(p.Lat, 90)
	if !ok {
		return RawFix{}, fmt.Sprintf("invalid latitude %q", p.Lat)
	}
	lon, ok := parseCoord(p.Lon, 180)
	if !ok {
		return RawFix{}, fmt.Sprintf("invalid longitude %q", p.Lon)
	}
	if strings.TrimSpace(p.Time) == "" {
		return RawFix{}, fmt.Sprintf("no time at (%s, %s)", p.Lat, p.Lon)
	}
	ts, ok := parseTime(p.Time)
	if !ok {
		return RawFix{}, fmt.Sprintf("invalid time %q", p.Time)
	}
	ele, err := strconv.ParseFloat(strings.TrimSpace(p.Ele), 64)
	if err != nil || math.IsNaN(ele) || math.IsInf(ele, 0) {
		ele = 0
	}
	return NewRawFix(ts, lat, lon, ele), ""
}

// Read decodes every trkpt element of a GPX document in document order.
// Trackpoints without coordinates or a usable time are skipped and
// recorded in the returned document. An error wrapping ErrMalformed is
// returned when the XML itself is not well-formed: a syntax error, no
// root element, a second root element or text outside the root.
func Read(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	var (
		points []*trkpt
		open   []*trkpt
		text   *string
		depth  int
		roots  int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return nil, fmt.Errorf("%w: second root element <%s>", ErrMalformed, tok.Name.Local)
				}
			}
			depth++
			text = nil
			if tok.Name.Local == "trkpt" {
				pt := &trkpt{depth: depth}
				for _, a := range tok.Attr {
					switch a.Name.Local {
					case "lat":
						pt.Lat = a.Value
					case "lon":
						pt.Lon = a.Value
					}
				}
				points = append(points, pt)
				open = append(open, pt)
				continue
			}
			if len(open) == 0 {
				continue
			}
			// only direct children of the innermost trkpt, first one wins
			pt := open[len(open)-1]
			if depth != pt.depth+1 {
				continue
			}
			switch {
			case tok.Name.Local == "ele" && !pt.hasEle:
				pt.hasEle = true
				text = &pt.Ele
			case tok.Name.Local == "time" && !pt.hasTime:
				pt.hasTime = true
				text = &pt.Time
			}
		case xml.EndElement:
			if n := len(open); n > 0 && open[n-1].depth == depth {
				open = open[:n-1]
			}
			depth--
			text = nil
		case xml.CharData:
			if depth == 0 {
				if strings.Trim(string(tok), " \t\r\n\ufeff") != "" {
					return nil, fmt.Errorf("%w: text outside the root element", ErrMalformed)
				}
				continue
			}
			if text != nil {
				*text += string(tok)
			}
		}
	}
	if roots == 0 {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	doc := &Document{TrackPoints: len(points)}
	for i, pt := range points {
		fix, reason := pt.fix()
		if reason != "" {
			s := Skipped{Index: i + 1, Reason: reason}
			log.Printf("Skipping %s", s)
			doc.Skipped = append(doc.Skipped, s)
			continue
		}
		doc.Fixes = append(doc.Fixes, fix)
	}
	if doc.TrackPoints == 0 {
		log.Printf("No <trkpt> elements found")
	} else if doc.Empty() {
		log.Printf("All %d trackpoints were skipped", doc.TrackPoints)
	}
	return doc, nil
}

func ReadBytes(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}
