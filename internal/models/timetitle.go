package models

import (
	"fmt"
	"time"
)

// TimeBasedTitle labels a moment the way new notes are named, e.g.
// "June 7 Evening" or "June 8 Morning".
func TimeBasedTitle(t time.Time) string {
	return fmt.Sprintf("%s %d %s", t.Month(), t.Day(), partOfDay(t.Hour()))
}

func partOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 17:
		return "Afternoon"
	case hour >= 17 && hour < 21:
		return "Evening"
	default:
		return "Night"
	}
}
