package analytics

import (
	"sort"
	"time"

	"timekeep/internal/model"
)

// Totals is a duration/cost/count rollup of a set of closed sessions.
type Totals struct {
	Seconds  float64 `json:"seconds"`
	Cost     float64 `json:"cost"`
	Sessions int     `json:"sessions"`
}

// RankedEntry is one row of a leaderboard.
type RankedEntry struct {
	Name     string  `json:"name"`
	Color    string  `json:"color,omitempty"`
	Seconds  float64 `json:"seconds"`
	Cost     float64 `json:"cost"`
	Sessions int     `json:"sessions"`
}

// SeriesPoint is one bucket of a time series, expressed in hours.
type SeriesPoint struct {
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
}

// CostPoint is one bucket of a cost series.
type CostPoint struct {
	Label string  `json:"label"`
	Cost  float64 `json:"cost"`
}

// Report is the full analytics payload for a workspace, built from closed
// sessions only. All series bucket by session end time.
type Report struct {
	Totals          Totals        `json:"totals"`
	TopTimers       []RankedEntry `json:"top_timers"`
	TopProjects     []RankedEntry `json:"top_projects"`
	TopCustomers    []RankedEntry `json:"top_customers"`
	TopDeliverables []RankedEntry `json:"top_deliverables"`
	Daily           []SeriesPoint `json:"daily"`
	Weekly          []SeriesPoint `json:"weekly"`
	Monthly         []SeriesPoint `json:"monthly"`
	CostDaily       []CostPoint   `json:"cost_daily"`
	Hourly          []float64     `json:"hourly"`
	Weekday         []float64     `json:"weekday"`
	MostActiveDay   string        `json:"most_active_day"`
	ThisWeek        Totals        `json:"this_week"`
	Team            []RankedEntry `json:"team,omitempty"`
}

const rankLimit = 10

var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// BuildReport assembles the full report. The team breakdown is included only
// when the workspace has more than one member.
func BuildReport(facts []SessionFact, memberNames map[int]string, now time.Time) *Report {
	r := &Report{
		Totals:          Summarize(facts),
		TopTimers:       TopTimers(facts),
		TopProjects:     TopProjects(facts),
		TopCustomers:    TopCustomers(facts),
		TopDeliverables: TopDeliverables(facts),
		Daily:           DailySeries(facts, now),
		Weekly:          WeeklySeries(facts, now),
		Monthly:         MonthlySeries(facts),
		CostDaily:       CostByDay(facts, now),
		Hourly:          HourHistogram(facts),
		Weekday:         WeekdayHistogram(facts),
		MostActiveDay:   MostActiveDay(facts),
		ThisWeek:        ThisWeek(facts, now),
	}
	if len(memberNames) > 1 {
		r.Team = TeamBreakdown(facts, memberNames)
	}
	return r
}

// Summarize rolls a set of facts into totals. Cost is rounded at this
// reporting boundary only.
func Summarize(facts []SessionFact) Totals {
	var t Totals
	for _, f := range facts {
		t.Seconds += f.DurationSeconds
		t.Cost += f.Cost()
		t.Sessions++
	}
	t.Cost = model.Round2(t.Cost)
	return t
}

type rankKey struct {
	name  string
	color string
}

func rank(facts []SessionFact, key func(SessionFact) (rankKey, bool), limit int) []RankedEntry {
	byKey := make(map[rankKey]*RankedEntry)
	order := make([]rankKey, 0)
	for _, f := range facts {
		k, ok := key(f)
		if !ok {
			continue
		}
		e, exists := byKey[k]
		if !exists {
			e = &RankedEntry{Name: k.name, Color: k.color}
			byKey[k] = e
			order = append(order, k)
		}
		e.Seconds += f.DurationSeconds
		e.Cost += f.Cost()
		e.Sessions++
	}

	entries := make([]RankedEntry, 0, len(order))
	for _, k := range order {
		e := byKey[k]
		e.Cost = model.Round2(e.Cost)
		entries = append(entries, *e)
	}

	// Longest first; ties broken by name so the order is deterministic.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds > entries[j].Seconds
		}
		return entries[i].Name < entries[j].Name
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// TopTimers ranks timer templates by tracked duration.
func TopTimers(facts []SessionFact) []RankedEntry {
	return rank(facts, func(f SessionFact) (rankKey, bool) {
		return rankKey{name: f.TimerName, color: f.TimerColor}, true
	}, rankLimit)
}

// TopProjects ranks projects by tracked duration.
func TopProjects(facts []SessionFact) []RankedEntry {
	return rank(facts, func(f SessionFact) (rankKey, bool) {
		return rankKey{name: f.ProjectName}, true
	}, rankLimit)
}

// TopCustomers ranks customers by tracked duration.
func TopCustomers(facts []SessionFact) []RankedEntry {
	return rank(facts, func(f SessionFact) (rankKey, bool) {
		return rankKey{name: f.CustomerName}, true
	}, rankLimit)
}

// TopDeliverables ranks deliverables by tracked duration. Untagged sessions
// are skipped.
func TopDeliverables(facts []SessionFact) []RankedEntry {
	return rank(facts, func(f SessionFact) (rankKey, bool) {
		if f.DeliverableID == nil {
			return rankKey{}, false
		}
		return rankKey{name: f.DeliverableName}, true
	}, rankLimit)
}

// TeamBreakdown groups facts by creator. Members with no sessions still get
// a zero row so the whole team is visible.
func TeamBreakdown(facts []SessionFact, memberNames map[int]string) []RankedEntry {
	byUser := make(map[int]*RankedEntry, len(memberNames))
	for id, name := range memberNames {
		byUser[id] = &RankedEntry{Name: name}
	}
	for _, f := range facts {
		if f.CreatedBy == nil {
			continue
		}
		e, ok := byUser[*f.CreatedBy]
		if !ok {
			continue
		}
		e.Seconds += f.DurationSeconds
		e.Cost += f.Cost()
		e.Sessions++
	}

	entries := make([]RankedEntry, 0, len(byUser))
	for _, e := range byUser {
		e.Cost = model.Round2(e.Cost)
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds > entries[j].Seconds
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

func sparseSeries(facts []SessionFact, bucket func(time.Time) (time.Time, string)) []SeriesPoint {
	type entry struct {
		at    time.Time
		label string
		secs  float64
	}
	byBucket := make(map[time.Time]*entry)
	for _, f := range facts {
		at, label := bucket(f.EndTime)
		e, ok := byBucket[at]
		if !ok {
			e = &entry{at: at, label: label}
			byBucket[at] = e
		}
		e.secs += f.DurationSeconds
	}

	entries := make([]*entry, 0, len(byBucket))
	for _, e := range byBucket {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	points := make([]SeriesPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, SeriesPoint{Label: e.label, Hours: e.secs / 3600})
	}
	return points
}

// DailySeries buckets the last 30 days of sessions by calendar day of their
// end time. Empty days are omitted.
func DailySeries(facts []SessionFact, now time.Time) []SeriesPoint {
	cutoff := now.AddDate(0, 0, -30)
	recent := filterSince(facts, cutoff)
	return sparseSeries(recent, func(t time.Time) (time.Time, string) {
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return day, day.Format("01/02")
	})
}

// WeeklySeries buckets the last 12 ISO weeks (Monday start).
func WeeklySeries(facts []SessionFact, now time.Time) []SeriesPoint {
	cutoff := now.AddDate(0, 0, -84)
	recent := filterSince(facts, cutoff)
	points := sparseSeries(recent, func(t time.Time) (time.Time, string) {
		ws := WeekStart(t)
		return ws, ws.Format("01/02")
	})
	if len(points) > 12 {
		points = points[len(points)-12:]
	}
	return points
}

// MonthlySeries buckets all history by calendar month.
func MonthlySeries(facts []SessionFact) []SeriesPoint {
	return sparseSeries(facts, func(t time.Time) (time.Time, string) {
		month := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		return month, month.Format("2006-01")
	})
}

// CostByDay buckets the last 30 days of billed cost by calendar day.
func CostByDay(facts []SessionFact, now time.Time) []CostPoint {
	cutoff := now.AddDate(0, 0, -30)
	type entry struct {
		at   time.Time
		cost float64
	}
	byDay := make(map[time.Time]*entry)
	for _, f := range facts {
		if f.EndTime.Before(cutoff) {
			continue
		}
		day := time.Date(f.EndTime.Year(), f.EndTime.Month(), f.EndTime.Day(), 0, 0, 0, 0, f.EndTime.Location())
		e, ok := byDay[day]
		if !ok {
			e = &entry{at: day}
			byDay[day] = e
		}
		e.cost += f.Cost()
	}

	entries := make([]*entry, 0, len(byDay))
	for _, e := range byDay {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	points := make([]CostPoint, 0, len(entries))
	for _, e := range entries {
		points = append(points, CostPoint{Label: e.at.Format("01/02"), Cost: model.Round2(e.cost)})
	}
	return points
}

// HourHistogram sums tracked hours by end-time hour of day. All 24 buckets
// are always present.
func HourHistogram(facts []SessionFact) []float64 {
	hours := make([]float64, 24)
	for _, f := range facts {
		hours[f.EndTime.Hour()] += f.DurationSeconds / 3600
	}
	return hours
}

// WeekdayHistogram sums tracked hours by end-time weekday, Monday first.
// All 7 buckets are always present.
func WeekdayHistogram(facts []SessionFact) []float64 {
	days := make([]float64, 7)
	for _, f := range facts {
		days[weekdayIndex(f.EndTime)] += f.DurationSeconds / 3600
	}
	return days
}

// MostActiveDay returns the weekday with the largest all-time tracked
// duration, or "" when there are no sessions. Ties resolve to the earlier
// weekday.
func MostActiveDay(facts []SessionFact) string {
	if len(facts) == 0 {
		return ""
	}
	days := WeekdayHistogram(facts)
	best := 0
	for i := 1; i < 7; i++ {
		if days[i] > days[best] {
			best = i
		}
	}
	return weekdayNames[best]
}

// ThisWeek rolls up sessions ending on or after the most recent Monday 00:00.
func ThisWeek(facts []SessionFact, now time.Time) Totals {
	return Summarize(filterSince(facts, WeekStart(now)))
}

// WeekStart returns Monday 00:00 of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -weekdayIndex(day))
}

func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7 // Monday = 0
}

func filterSince(facts []SessionFact, cutoff time.Time) []SessionFact {
	out := make([]SessionFact, 0, len(facts))
	for _, f := range facts {
		if !f.EndTime.Before(cutoff) {
			out = append(out, f)
		}
	}
	return out
}
