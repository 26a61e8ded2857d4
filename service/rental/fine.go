package rental

import (
	"math"
	"time"
)

// LateDays counts started days past the due date. On-time or early is 0.
func LateDays(due, at time.Time) int {
	if !at.After(due) {
		return 0
	}
	return int(math.Ceil(at.Sub(due).Hours() / 24))
}

// FineFor prices a late return: started days late times the per-day rate.
func FineFor(due, at time.Time, perDay float64) float64 {
	return float64(LateDays(due, at)) * perDay
}
