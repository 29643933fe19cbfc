package history

import (
	"errors"

	"github.com/xolan/haven/internal/timeutil"
)

// DefaultTrendWindow is the number of most recent entries charted.
const DefaultTrendWindow = 14

// ErrInsufficientData is returned when fewer than two entries are available for a trend.
var ErrInsufficientData = errors.New("log at least 2 days to see your mood trends")

// Point is one charted entry.
type Point struct {
	Date  timeutil.Date
	Score int
	Label string // "Mar 4"
	Short string // "4"
}

// Trend is the ascending, window-limited series of mood scores.
type Trend struct {
	Points []Point
}

// Min returns the lowest score in the trend.
func (t Trend) Min() int {
	lo := 0
	for i, p := range t.Points {
		if i == 0 || p.Score < lo {
			lo = p.Score
		}
	}
	return lo
}

// Max returns the highest score in the trend.
func (t Trend) Max() int {
	hi := 0
	for _, p := range t.Points {
		if p.Score > hi {
			hi = p.Score
		}
	}
	return hi
}

// Delta is the change from the first to the last point.
func (t Trend) Delta() int {
	if len(t.Points) < 2 {
		return 0
	}
	return t.Points[len(t.Points)-1].Score - t.Points[0].Score
}

// Trend returns the most recent window entries in ascending date order.
// A window <= 0 uses DefaultTrendWindow.
func (h *History) Trend(window int) (Trend, error) {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	recent := h.entries
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	if len(recent) < 2 {
		return Trend{}, ErrInsufficientData
	}

	points := make([]Point, len(recent))
	for i, e := range recent {
		points[i] = Point{
			Date:  e.Date,
			Score: e.Score,
			Label: e.Date.Format("Jan 2"),
			Short: e.Date.Format("2"),
		}
	}
	return Trend{Points: points}, nil
}

// Average returns the mean score of the most recent window entries
// (all entries when window <= 0). ok is false when there are no entries.
func (h *History) Average(window int) (avg float64, ok bool) {
	recent := h.entries
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	if len(recent) == 0 {
		return 0, false
	}
	sum := 0
	for _, e := range recent {
		sum += e.Score
	}
	return float64(sum) / float64(len(recent)), true
}
