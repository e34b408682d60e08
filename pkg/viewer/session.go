package viewer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ray1729/gpx-journey/pkg/locate"
	"github.com/ray1729/gpx-journey/pkg/panel"
	"github.com/ray1729/gpx-journey/pkg/track"
)

var (
	ErrClosed     = errors.New("session closed")
	ErrNoTrack    = errors.New("no track loaded")
	ErrOutOfRange = errors.New("index out of range")
)

// Listener is notified of the outcome of each Session.Load.
type Listener interface {
	TrackReady(t *Track)
	TrackRejected(reason string)
}

// Selection pairs the segments of a track with their visibility flags.
// It is rebuilt whenever a new track is loaded, so the two always have
// the same length.
type Selection struct {
	segments []track.Segment
	visible  []bool
}

func NewSelection(segments []track.Segment) *Selection {
	return &Selection{segments: segments, visible: make([]bool, len(segments))}
}

func (s *Selection) Len() int {
	return len(s.segments)
}

func (s *Selection) Segments() []track.Segment {
	return s.segments
}

// Flags returns a copy of the visibility flags.
func (s *Selection) Flags() []bool {
	flags := make([]bool, len(s.visible))
	copy(flags, s.visible)
	return flags
}

func (s *Selection) check(i int) error {
	if i < 0 || i >= len(s.visible) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(s.visible))
	}
	return nil
}

func (s *Selection) Toggle(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.visible[i] = !s.visible[i]
	return nil
}

func (s *Selection) Set(i int, v bool) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.visible[i] = v
	return nil
}

// Clear deselects every segment, which shows the whole track.
func (s *Selection) Clear() {
	for i := range s.visible {
		s.visible[i] = false
	}
}

func (s *Selection) VisiblePoints() []track.Point {
	return track.VisiblePoints(s.segments, s.visible)
}

// Session holds the track currently on display. It is safe for
// concurrent use. Call Close when done with it.
type Session struct {
	cfg track.StopConfig

	mu        sync.Mutex
	listener  Listener
	current   *Track
	selection *Selection
	index     *locate.Index
	closed    bool
}

// Open starts a session that analyses tracks with cfg and reports to l,
// which may be nil.
func Open(cfg track.StopConfig, l Listener) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, listener: l}, nil
}

// Close releases the current track and the listener. Closing twice is
// harmless.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listener = nil
	s.current = nil
	s.selection = nil
	s.index = nil
	return nil
}

// Load analyses data and, unless it is rejected, makes it the current
// track with nothing selected. The previous track is kept when the new
// one is rejected.
func (s *Session) Load(data []byte) (*Track, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.mu.Unlock()

	t, err := Analyze(data, s.cfg)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	l := s.listener
	if err == nil {
		s.current = t
		s.selection = NewSelection(t.Segments)
		s.index = locate.NewIndex(t.Points)
	}
	s.mu.Unlock()

	if l != nil {
		var rejected *RejectedError
		switch {
		case err == nil:
			l.TrackReady(t)
		case errors.As(err, &rejected):
			l.TrackRejected(rejected.Reason)
		}
	}
	return t, err
}

func (s *Session) Track() *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Flags returns the visibility flags of the current track's segments.
func (s *Session) Flags() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return nil
	}
	return s.selection.Flags()
}

func (s *Session) Toggle(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return ErrNoTrack
	}
	return s.selection.Toggle(i)
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection != nil {
		s.selection.Clear()
	}
}

func (s *Session) VisiblePoints() []track.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return nil
	}
	return s.selection.VisiblePoints()
}

// Nearest returns the point of the current track closest to (lat, lon).
func (s *Session) Nearest(lat, lon float64) (locate.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return locate.Match{}, ErrNoTrack
	}
	m, ok := s.index.Nearest(lat, lon)
	if !ok {
		return locate.Match{}, ErrNoTrack
	}
	return m, nil
}

// NearestEdge returns the readout for the visible edge whose midpoint is
// closest to (lat, lon).
func (s *Session) NearestEdge(lat, lon float64, loc *time.Location) (panel.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return panel.Edge{}, ErrNoTrack
	}
	points := s.selection.VisiblePoints()
	e, ok := panel.NewEdge(points, panel.NearestEdge(points, lat, lon), loc)
	if !ok {
		return panel.Edge{}, ErrNoTrack
	}
	return e, nil
}
