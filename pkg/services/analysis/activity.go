package analysis

import (
	"sort"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
)

// DayCount is a per-day value.
type DayCount struct {
	Day   time.Time
	Count int
}

// day returns the calendar date of t as midnight UTC, so equal dates compare equal
// regardless of the zone they were loaded with.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortedDays(m map[time.Time]int) []DayCount {
	out := make([]DayCount, 0, len(m))
	for d, n := range m {
		out = append(out, DayCount{Day: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// CumulativeUsers returns the running total of sign-ups per day. Users without a creation
// time are not counted.
func CumulativeUsers(users []domain.User) []DayCount {
	perDay := make(map[time.Time]int)
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			continue
		}
		perDay[day(u.CreatedAt)]++
	}
	days := sortedDays(perDay)
	total := 0
	for i := range days {
		total += days[i].Count
		days[i].Count = total
	}
	return days
}

// DailyActiveUsers counts distinct users per session start day.
func DailyActiveUsers(sessions []domain.Session) []DayCount {
	seen := make(map[time.Time]map[string]struct{})
	for _, s := range sessions {
		d := day(s.Start)
		if seen[d] == nil {
			seen[d] = make(map[string]struct{})
		}
		seen[d][s.UserID] = struct{}{}
	}
	perDay := make(map[time.Time]int, len(seen))
	for d, users := range seen {
		perDay[d] = len(users)
	}
	return sortedDays(perDay)
}

// MaxCount returns the largest count, 0 for no days.
func MaxCount(days []DayCount) int {
	m := 0
	for _, d := range days {
		if d.Count > m {
			m = d.Count
		}
	}
	return m
}

// Last returns the final count, 0 for no days.
func Last(days []DayCount) int {
	if len(days) == 0 {
		return 0
	}
	return days[len(days)-1].Count
}

// TotalRevenue sums payment amounts rounded to cents.
func TotalRevenue(payments []domain.Payment) float64 {
	total := 0.0
	for _, p := range payments {
		total += p.Amount
	}
	return Round(total, 2)
}

// RevenuePerUser sums payments per paying user. Payments without a user are skipped.
func RevenuePerUser(payments []domain.Payment) []float64 {
	perUser := make(map[string]float64)
	for _, p := range payments {
		if p.UserID == "" {
			continue
		}
		perUser[p.UserID] += p.Amount
	}
	users := make([]string, 0, len(perUser))
	for u := range perUser {
		users = append(users, u)
	}
	sort.Strings(users)
	out := make([]float64, 0, len(users))
	for _, u := range users {
		out = append(out, perUser[u])
	}
	return out
}

// SessionsPerUser counts sessions per user.
func SessionsPerUser(sessions []domain.Session) []float64 {
	perUser := make(map[string]int)
	for _, s := range sessions {
		perUser[s.UserID]++
	}
	out := make([]float64, 0, len(perUser))
	for _, n := range perUser {
		out = append(out, float64(n))
	}
	sort.Float64s(out)
	return out
}

// TimeToBook joins each booking event to the latest session of the same user that started at
// or before it, within tolerance, and returns the elapsed minutes. Bookings without such a
// session are skipped.
func TimeToBook(events []domain.Event, sessions []domain.Session, tolerance time.Duration) []float64 {
	starts := make(map[string][]time.Time)
	for _, s := range sessions {
		if s.Start.IsZero() {
			continue
		}
		starts[s.UserID] = append(starts[s.UserID], s.Start)
	}
	for _, ts := range starts {
		sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
	}

	var minutes []float64
	for _, e := range events {
		if stage, ok := StageOf(e.Type); !ok || stage != StageBook {
			continue
		}
		ts := starts[e.UserID]
		idx := sort.Search(len(ts), func(i int) bool { return ts[i].After(e.Time) }) - 1
		if idx < 0 {
			continue
		}
		elapsed := e.Time.Sub(ts[idx])
		if elapsed > tolerance {
			continue
		}
		minutes = append(minutes, elapsed.Minutes())
	}
	return minutes
}
