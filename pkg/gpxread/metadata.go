package gpxread

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/twpayne/go-gpx"
)

// Metadata describes the document rather than its trackpoints.
type Metadata struct {
	Name        string     `json:",omitempty"`
	Description string     `json:",omitempty"`
	Creator     string     `json:",omitempty"`
	Time        *time.Time `json:",omitempty"`
	Link        string     `json:",omitempty"`
	Tracks      int
	Segments    int
}

// ReadMetadata decodes the document header and track names. It is strict
// about the whole document, so callers should treat a failure as "no
// metadata" rather than as a rejected track.
func ReadMetadata(data []byte) (*Metadata, error) {
	g, err := gpx.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error reading GPX metadata: %v", err)
	}
	m := &Metadata{Creator: g.Creator, Tracks: len(g.Trk)}
	if g.Metadata != nil {
		m.Name = g.Metadata.Name
		m.Description = g.Metadata.Desc
		if !g.Metadata.Time.IsZero() {
			ts := g.Metadata.Time
			m.Time = &ts
		}
		for _, l := range g.Metadata.Link {
			if strings.HasPrefix(l.HREF, "http") {
				m.Link = l.HREF
				break
			}
		}
	}
	for _, trk := range g.Trk {
		m.Segments += len(trk.TrkSeg)
		if m.Name == "" {
			m.Name = trk.Name
		}
		if m.Description == "" {
			m.Description = trk.Desc
		}
	}
	return m, nil
}
