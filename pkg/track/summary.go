package track

type Summary struct {
	Points       int
	Start        int64
	Finish       int64
	Duration     int64
	Distance     float64
	AvgSpeedKmph float64
	Stops        int
	MovingTime   int64
	StoppedTime  int64
	MinAltitude  float64
	MaxAltitude  float64
	Climb        float64
	Descent      float64
	Direction    string
}

// ElevationRange returns the lowest and highest altitude of the points,
// or zeros for an empty slice.
func ElevationRange(points []Point) (min, max float64) {
	if len(points) == 0 {
		return 0, 0
	}
	min, max = points[0].Alt, points[0].Alt
	for _, p := range points[1:] {
		if p.Alt < min {
			min = p.Alt
		}
		if p.Alt > max {
			max = p.Alt
		}
	}
	return min, max
}

func Summarize(points []Point, segments []Segment) Summary {
	s := Summary{Points: len(points)}
	if len(points) == 0 {
		return s
	}
	s.Start = points[0].Time
	s.Finish = points[len(points)-1].Time
	s.Duration = s.Finish - s.Start
	s.Distance = PathDistance(points)
	if s.Duration > 0 {
		s.AvgSpeedKmph = s.Distance / float64(s.Duration) * 3.6
	}
	s.MinAltitude, s.MaxAltitude = ElevationRange(points)
	s.Climb, s.Descent = ClimbDescent(points)
	s.Direction = Direction(points)
	for _, seg := range segments {
		if seg.Stats == nil {
			continue
		}
		switch seg.Kind {
		case KindStop:
			s.Stops++
			s.StoppedTime += seg.Stats.Duration
		case KindMove:
			s.MovingTime += seg.Stats.Duration
		}
	}
	return s
}
