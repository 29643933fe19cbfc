// Package mood defines daily mood check-ins and their mapping to stored records.
package mood

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mood is one of the five check-in labels.
type Mood string

const (
	Amazing Mood = "amazing"
	Good    Mood = "good"
	Okay    Mood = "okay"
	Low     Mood = "low"
	Rough   Mood = "rough"
)

// MinScore and MaxScore bound mood_score.
const (
	MinScore = 1
	MaxScore = 5
)

// ErrUnknownMood is returned for labels outside the five moods.
var ErrUnknownMood = errors.New("unknown mood")

type info struct {
	score int
	emoji string
	label string
	color string
}

var moods = map[Mood]info{
	Amazing: {5, "🌟", "Amazing", "#F59E0B"},
	Good:    {4, "😊", "Good", "#10B981"},
	Okay:    {3, "😐", "Okay", "#3B82F6"},
	Low:     {2, "😔", "Low", "#8B5CF6"},
	Rough:   {1, "😢", "Rough", "#F43F5E"},
}

// All lists the moods from best to worst, the order they are offered in.
var All = []Mood{Amazing, Good, Okay, Low, Rough}

// Valid reports whether m is one of the five moods.
func (m Mood) Valid() bool {
	_, ok := moods[m]
	return ok
}

// Score returns the 1-5 score of m, or 0 for an unknown mood.
func (m Mood) Score() int {
	return moods[m].score
}

// Emoji returns the emoji shown for m.
func (m Mood) Emoji() string {
	return moods[m].emoji
}

// Label returns the display label, e.g. "Amazing".
func (m Mood) Label() string {
	if i, ok := moods[m]; ok {
		return i.label
	}
	return string(m)
}

// Color returns the hex color used when rendering m.
func (m Mood) Color() string {
	return moods[m].color
}

func (m Mood) String() string {
	return string(m)
}

// FromScore returns the mood for a 1-5 score.
func FromScore(score int) (Mood, bool) {
	for _, m := range All {
		if m.Score() == score {
			return m, true
		}
	}
	return "", false
}

// ParseMood accepts a label ("good", case-insensitive) or a score ("4").
func ParseMood(s string) (Mood, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := Mood(s); m.Valid() {
		return m, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if m, ok := FromScore(n); ok {
			return m, nil
		}
		return "", fmt.Errorf("%w: score %d (use %d-%d)", ErrUnknownMood, n, MinScore, MaxScore)
	}
	return "", fmt.Errorf("%w: %q (use one of %s or a score %d-%d)", ErrUnknownMood, s, names(), MinScore, MaxScore)
}

func names() string {
	parts := make([]string, len(All))
	for i, m := range All {
		parts[i] = string(m)
	}
	return strings.Join(parts, ", ")
}
