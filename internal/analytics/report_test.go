package analytics

import (
	"fmt"
	"testing"
	"time"
)

// 2026-03-02 is a Monday; 2026-03-04 a Wednesday.
var (
	monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now    = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
)

func fact(timer string, end time.Time, seconds, price float64) SessionFact {
	return SessionFact{
		TimerName:       timer,
		ProjectName:     "Website",
		CustomerName:    "Acme",
		EndTime:         end,
		PricePerHour:    price,
		DurationSeconds: seconds,
	}
}

func TestSummarize(t *testing.T) {
	facts := []SessionFact{
		fact("design", now, 3600, 100),
		fact("dev", now, 1800, 50),
	}
	got := Summarize(facts)
	if got.Seconds != 5400 {
		t.Fatalf("seconds = %v, want 5400", got.Seconds)
	}
	if got.Cost != 125 {
		t.Fatalf("cost = %v, want 125", got.Cost)
	}
	if got.Sessions != 2 {
		t.Fatalf("sessions = %d, want 2", got.Sessions)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Seconds != 0 || got.Cost != 0 || got.Sessions != 0 {
		t.Fatalf("empty totals = %+v, want zeros", got)
	}
}

func TestTopTimersOrderAndTiebreak(t *testing.T) {
	facts := []SessionFact{
		fact("carol", now, 3600, 0),
		fact("bob", now, 7200, 0),
		fact("alice", now, 3600, 0),
	}
	got := TopTimers(facts)
	want := []string{"bob", "alice", "carol"}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("rank[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestTopTimersLimitedToTen(t *testing.T) {
	var facts []SessionFact
	for i := 0; i < 12; i++ {
		facts = append(facts, fact(fmt.Sprintf("timer-%02d", i), now, float64(100*(i+1)), 0))
	}
	got := TopTimers(facts)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0].Name != "timer-11" {
		t.Fatalf("top entry = %q, want timer-11", got[0].Name)
	}
}

func TestTopDeliverablesSkipsUntagged(t *testing.T) {
	id := 7
	tagged := fact("design", now, 3600, 0)
	tagged.DeliverableID = &id
	tagged.DeliverableName = "logo"
	untagged := fact("design", now, 1800, 0)

	got := TopDeliverables([]SessionFact{tagged, untagged})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Name != "logo" || got[0].Seconds != 3600 {
		t.Fatalf("entry = %+v, want logo/3600", got[0])
	}
}

func TestHourHistogram(t *testing.T) {
	facts := []SessionFact{
		fact("a", time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), 3600, 0),
		fact("b", time.Date(2026, 3, 3, 9, 15, 0, 0, time.UTC), 1800, 0),
		fact("c", time.Date(2026, 3, 3, 23, 0, 0, 0, time.UTC), 7200, 0),
	}
	got := HourHistogram(facts)
	if len(got) != 24 {
		t.Fatalf("len = %d, want 24", len(got))
	}
	if got[9] != 1.5 {
		t.Fatalf("hour 9 = %v, want 1.5", got[9])
	}
	if got[23] != 2 {
		t.Fatalf("hour 23 = %v, want 2", got[23])
	}
	if got[0] != 0 {
		t.Fatalf("hour 0 = %v, want 0", got[0])
	}
}

func TestWeekdayHistogramMondayFirst(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 14, 0, 0, 0, time.UTC)
	facts := []SessionFact{
		fact("a", monday, 3600, 0),
		fact("b", sunday, 1800, 0),
	}
	got := WeekdayHistogram(facts)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[0] != 1 {
		t.Fatalf("Monday = %v, want 1", got[0])
	}
	if got[6] != 0.5 {
		t.Fatalf("Sunday = %v, want 0.5", got[6])
	}
}

func TestMostActiveDay(t *testing.T) {
	if got := MostActiveDay(nil); got != "" {
		t.Fatalf("empty = %q, want empty string", got)
	}

	wednesday := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	facts := []SessionFact{
		fact("a", monday, 3600, 0),
		fact("b", wednesday, 3600, 0),
	}
	// Tie resolves to the earlier weekday.
	if got := MostActiveDay(facts); got != "Monday" {
		t.Fatalf("got %q, want Monday", got)
	}

	facts = append(facts, fact("c", wednesday, 1, 0))
	if got := MostActiveDay(facts); got != "Wednesday" {
		t.Fatalf("got %q, want Wednesday", got)
	}
}

func TestDailySeriesCutoffAndBuckets(t *testing.T) {
	old := fact("a", now.AddDate(0, 0, -40), 3600, 0)
	d1a := fact("b", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 1800, 0)
	d1b := fact("c", time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC), 1800, 0)
	d2 := fact("d", time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), 3600, 0)

	got := DailySeries([]SessionFact{old, d1a, d1b, d2}, now)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "03/02" || got[0].Hours != 1 {
		t.Fatalf("first = %+v, want 03/02 / 1h", got[0])
	}
	if got[1].Label != "03/03" || got[1].Hours != 1 {
		t.Fatalf("second = %+v, want 03/03 / 1h", got[1])
	}
}

func TestWeeklySeriesSplitsAtMonday(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	facts := []SessionFact{
		fact("a", sunday, 3600, 0),
		fact("b", monday, 3600, 0),
	}
	got := WeeklySeries(facts, now)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "02/23" {
		t.Fatalf("first bucket = %q, want 02/23", got[0].Label)
	}
	if got[1].Label != "03/02" {
		t.Fatalf("second bucket = %q, want 03/02", got[1].Label)
	}
}

func TestMonthlySeries(t *testing.T) {
	facts := []SessionFact{
		fact("a", time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC), 3600, 0),
		fact("b", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 7200, 0),
	}
	got := MonthlySeries(facts)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label != "2026-01" || got[0].Hours != 1 {
		t.Fatalf("first = %+v, want 2026-01 / 1h", got[0])
	}
	if got[1].Label != "2026-03" || got[1].Hours != 2 {
		t.Fatalf("second = %+v, want 2026-03 / 2h", got[1])
	}
}

func TestCostByDayRounds(t *testing.T) {
	facts := []SessionFact{
		fact("a", monday, 1000, 99.99),
		fact("b", monday, 1000, 99.99),
	}
	got := CostByDay(facts, now)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	// Two sessions of 27.78 each, rounded again at the day boundary.
	if got[0].Cost != 55.56 {
		t.Fatalf("cost = %v, want 55.56", got[0].Cost)
	}
}

func TestThisWeek(t *testing.T) {
	lastWeek := fact("a", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 3600, 100)
	thisWeek := fact("b", time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC), 1800, 100)

	got := ThisWeek([]SessionFact{lastWeek, thisWeek}, now)
	if got.Sessions != 1 || got.Seconds != 1800 {
		t.Fatalf("this week = %+v, want one 1800s session", got)
	}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{monday, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := WeekStart(c.in); !got.Equal(c.want) {
			t.Fatalf("WeekStart(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTotalsConsistentAcrossLevels(t *testing.T) {
	website := fact("design", monday, 3600, 100)
	app := fact("design", monday, 5400, 80)
	app.ProjectName = "App"

	all := Summarize([]SessionFact{website, app})
	perProject := []Totals{
		Summarize([]SessionFact{website}),
		Summarize([]SessionFact{app}),
	}

	var seconds float64
	var sessions int
	for _, p := range perProject {
		seconds += p.Seconds
		sessions += p.Sessions
	}
	if all.Seconds != seconds {
		t.Fatalf("customer seconds %v != sum of project seconds %v", all.Seconds, seconds)
	}
	if all.Sessions != sessions {
		t.Fatalf("customer sessions %d != sum of project sessions %d", all.Sessions, sessions)
	}
}

func TestTeamBreakdownIncludesIdleMembers(t *testing.T) {
	alice, bob := 1, 2
	f := fact("a", monday, 3600, 100)
	f.CreatedBy = &alice

	got := TeamBreakdown([]SessionFact{f}, map[int]string{alice: "alice", bob: "bob"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "alice" || got[0].Seconds != 3600 {
		t.Fatalf("first = %+v, want alice/3600", got[0])
	}
	if got[1].Name != "bob" || got[1].Seconds != 0 {
		t.Fatalf("second = %+v, want bob zero row", got[1])
	}
}

func TestBuildReportTeamGating(t *testing.T) {
	facts := []SessionFact{fact("a", monday, 3600, 100)}

	solo := BuildReport(facts, map[int]string{1: "alice"}, now)
	if solo.Team != nil {
		t.Fatalf("solo workspace must have no team breakdown, got %+v", solo.Team)
	}

	team := BuildReport(facts, map[int]string{1: "alice", 2: "bob"}, now)
	if len(team.Team) != 2 {
		t.Fatalf("team breakdown len = %d, want 2", len(team.Team))
	}
	if len(team.Hourly) != 24 || len(team.Weekday) != 7 {
		t.Fatalf("histograms must be dense: %d/%d", len(team.Hourly), len(team.Weekday))
	}
}
