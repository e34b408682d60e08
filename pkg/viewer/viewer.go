// Package viewer ties the track pipeline together: it analyses GPX
// uploads, keeps the current track and segment selection of a session,
// and serves the result over HTTP.
package viewer

import (
	"errors"
	"fmt"
	"log"

	"github.com/ray1729/gpx-journey/pkg/gpxread"
	"github.com/ray1729/gpx-journey/pkg/track"
)

// RejectedError is returned when a document cannot be read as GPX at all.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("GPX rejected: %s", e.Reason)
}

// Track is the analysed form of one GPX document.
type Track struct {
	Metadata    *gpxread.Metadata
	Points      []track.Point
	Stops       []track.Stop
	Segments    []track.Segment
	Skipped     []gpxread.Skipped
	TrackPoints int
	Summary     track.Summary
}

// Empty reports whether the document had no usable trackpoints.
func (t *Track) Empty() bool {
	return len(t.Points) == 0
}

// Warning describes why an empty track has nothing to show.
func (t *Track) Warning() string {
	switch {
	case !t.Empty():
		return ""
	case t.TrackPoints == 0:
		return "no usable data: the document contains no trackpoints"
	default:
		return fmt.Sprintf("no usable data: all %d trackpoints were skipped", t.TrackPoints)
	}
}

// Analyze reads a GPX document and runs the full pipeline over it. A
// document that is not well-formed XML gives a *RejectedError; one with
// no usable trackpoints gives an empty Track and no error.
func Analyze(data []byte, cfg track.StopConfig) (*Track, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	doc, err := gpxread.ReadBytes(data)
	if err != nil {
		if errors.Is(err, gpxread.ErrMalformed) {
			return nil, &RejectedError{Reason: err.Error()}
		}
		return nil, err
	}
	t := &Track{Skipped: doc.Skipped, TrackPoints: doc.TrackPoints}
	if md, err := gpxread.ReadMetadata(data); err != nil {
		log.Printf("Ignoring metadata: %v", err)
	} else {
		t.Metadata = md
	}
	p := track.Process(doc.Fixes, cfg)
	t.Points = p.Points
	t.Stops = p.Stops
	t.Segments = track.Split(p.Points, p.Stops)
	t.Summary = track.Summarize(t.Points, t.Segments)
	log.Printf("Analyzed %d points (%d skipped): %d stops, %d segments",
		len(t.Points), len(t.Skipped), len(t.Stops), len(t.Segments))
	return t, nil
}
