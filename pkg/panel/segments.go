package panel

import (
	"fmt"
	"math"
	"time"

	"github.com/ray1729/gpx-journey/pkg/track"
)

// Segments shorter than this (metres) are left out of the list.
const MinListedDistance = 50.0

type SegmentItem struct {
	// Index into the full segment slice, used when toggling
	Index     int        `json:"index"`
	Title     string     `json:"title"`
	Kind      track.Kind `json:"kind"`
	KindLabel string     `json:"kindLabel"`
	TimeRange string     `json:"timeRange"`
	Distance  string     `json:"distance"`
	Duration  string     `json:"duration"`
	AvgSpeed  string     `json:"avgSpeed"`
	Checked   bool       `json:"checked"`
}

func kindLabel(k track.Kind) string {
	if k == track.KindStop {
		return "Stopped"
	}
	return "Moving"
}

// DurationText rounds seconds to whole minutes: "12 min", "1 h 5 min",
// or "--" when that is zero.
func DurationText(seconds int64) string {
	min := int64(math.Round(float64(seconds) / 60))
	switch {
	case min <= 0:
		return "--"
	case min < 60:
		return fmt.Sprintf("%d min", min)
	default:
		return fmt.Sprintf("%d h %d min", min/60, min%60)
	}
}

func distanceText(metres float64) string {
	if metres == 0 {
		return "--"
	}
	return fmt.Sprintf("%.2f km", metres/1000)
}

func speedKmphText(v float64) string {
	if v == 0 {
		return "--"
	}
	return fmt.Sprintf("%.1f", v)
}

// SegmentList returns the list entries for segments covering at least
// MinListedDistance. Checked mirrors the visibility flag of the segment.
func SegmentList(segments []track.Segment, visible []bool, loc *time.Location) []SegmentItem {
	var items []SegmentItem
	for i, seg := range segments {
		st := seg.Stats
		if st == nil || st.Distance < MinListedDistance {
			continue
		}
		start := time.Unix(st.StartTime, 0).In(loc).Format(clockLayout)
		end := time.Unix(st.EndTime, 0).In(loc).Format(clockLayout)
		items = append(items, SegmentItem{
			Index:     i,
			Title:     fmt.Sprintf("Segment %d", i+1),
			Kind:      seg.Kind,
			KindLabel: kindLabel(seg.Kind),
			TimeRange: start + " - " + end,
			Distance:  distanceText(st.Distance),
			Duration:  DurationText(st.Duration),
			AvgSpeed:  speedKmphText(st.AvgSpeedKmph),
			Checked:   i < len(visible) && visible[i],
		})
	}
	return items
}
