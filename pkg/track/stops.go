package track

import (
	"errors"
	"fmt"
)

// StopConfig holds the thresholds used to classify a stretch of track as
// stationary.
type StopConfig struct {
	// Number of consecutive points in the initial test window
	WindowSize int
	// Average speed (km/h) below which a window may be a stop
	SpeedThresholdKmph float64
	// Minimum duration (seconds) for a stop to be reported
	MinDuration int64
	// Straight-line displacement (metres) below which a window may be a stop
	MaxDisplacement float64
}

func DefaultStopConfig() StopConfig {
	return StopConfig{
		WindowSize:         5,
		SpeedThresholdKmph: 3,
		MinDuration:        60,
		MaxDisplacement:    30,
	}
}

var ErrInvalidConfig = errors.New("invalid stop configuration")

func (c StopConfig) Validate() error {
	switch {
	case c.WindowSize < 2:
		return fmt.Errorf("%w: window size %d is less than 2", ErrInvalidConfig, c.WindowSize)
	case c.SpeedThresholdKmph <= 0:
		return fmt.Errorf("%w: speed threshold must be positive", ErrInvalidConfig)
	case c.MinDuration < 0:
		return fmt.Errorf("%w: minimum duration must not be negative", ErrInvalidConfig)
	case c.MaxDisplacement <= 0:
		return fmt.Errorf("%w: maximum displacement must be positive", ErrInvalidConfig)
	}
	return nil
}

// Stop is an inclusive index range of a point slice where the track is
// stationary. The centre is the point half way through the range.
type Stop struct {
	StartIndex int
	EndIndex   int
	StartTime  int64
	EndTime    int64
	Duration   int64
	CenterLon  float64
	CenterLat  float64
}

func kmph(metres float64, seconds int64) float64 {
	if seconds <= 0 {
		return 0
	}
	return (metres / 1000) / (float64(seconds) / 3600)
}

func absDuration(d int64) int64 {
	if d < 0 {
		return -d
	}
	return d
}

// windowSpeed returns the average speed in km/h over points[i:i+n].
func windowSpeed(points []Point, i, n int) float64 {
	var dist float64
	var elapsed int64
	for j := i; j < i+n-1; j++ {
		dist += points[j].DistanceTo(points[j+1])
		elapsed += absDuration(points[j+1].Time - points[j].Time)
	}
	return kmph(dist, elapsed)
}

// DetectStops scans the points with a sliding window. A window that is
// slow and compact is extended one point at a time until the next edge is
// too fast or the track strays too far from the window start; the
// extended range is reported when it lasts long enough. Scanning resumes
// after the extended range whether or not it was reported.
//
// DetectStops panics if cfg is invalid.
func DetectStops(points []Point, cfg StopConfig) []Stop {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	var stops []Stop
	w := cfg.WindowSize
	i := 0
	for i <= len(points)-w {
		first := points[i]
		speed := windowSpeed(points, i, w)
		displacement := first.DistanceTo(points[i+w-1])
		if !(speed < cfg.SpeedThresholdKmph && displacement < cfg.MaxDisplacement) {
			i++
			continue
		}
		end := i + w - 1
		for end+1 < len(points) {
			cur, next := points[end], points[end+1]
			v := kmph(cur.DistanceTo(next), absDuration(next.Time-cur.Time))
			if v >= cfg.SpeedThresholdKmph || first.DistanceTo(next) >= cfg.MaxDisplacement {
				break
			}
			end++
		}
		if d := points[end].Time - first.Time; d >= cfg.MinDuration {
			mid := points[(i+end)/2]
			stops = append(stops, Stop{
				StartIndex: i,
				EndIndex:   end,
				StartTime:  first.Time,
				EndTime:    points[end].Time,
				Duration:   d,
				CenterLon:  mid.Lon,
				CenterLat:  mid.Lat,
			})
		}
		i = end + 1
	}
	return stops
}
