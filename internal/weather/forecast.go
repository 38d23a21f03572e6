package weather

import (
	"math"
	"time"
)

// ForecastDays is how many days the dashboard shows.
const ForecastDays = 5

// Aggregate groups slots by calendar day in loc, keeping the first n days in
// the order they appear.
func Aggregate(slots []Slot, loc *time.Location, n int) []Day {
	if loc == nil {
		loc = time.UTC
	}

	type bucket struct {
		date         time.Time
		temps        []float64
		icons, descs []string
	}
	var order []*bucket
	byDate := map[time.Time]*bucket{}

	for _, s := range slots {
		t := s.At.In(loc)
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		b, ok := byDate[d]
		if !ok {
			if len(order) == n {
				continue
			}
			b = &bucket{date: d}
			byDate[d] = b
			order = append(order, b)
		}
		b.temps = append(b.temps, s.Temp)
		b.icons = append(b.icons, s.Icon)
		b.descs = append(b.descs, s.Description)
	}

	days := make([]Day, 0, len(order))
	for _, b := range order {
		sum, hi, lo := 0.0, math.Inf(-1), math.Inf(1)
		for _, t := range b.temps {
			sum += t
			hi = math.Max(hi, t)
			lo = math.Min(lo, t)
		}
		days = append(days, Day{
			Date:        b.date,
			Avg:         round(sum / float64(len(b.temps))),
			Max:         round(hi),
			Min:         round(lo),
			Icon:        mostCommon(b.icons),
			Description: mostCommon(b.descs),
		})
	}
	return days
}

// round matches the display convention of rounding halves up, so -0.5 is 0.
func round(f float64) int {
	return int(math.Floor(f + 0.5))
}

// mostCommon returns the most frequent element; ties go to the one seen first.
func mostCommon(xs []string) string {
	counts := map[string]int{}
	best, bestN := "", 0
	for _, x := range xs {
		counts[x]++
	}
	for _, x := range xs {
		if counts[x] > bestN {
			best, bestN = x, counts[x]
		}
	}
	return best
}
