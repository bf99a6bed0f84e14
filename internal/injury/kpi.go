// Package injury computes the injury KPIs shown next to a player's
// evaluation: counts, days out, active injuries and squad-level rankings.
package injury

import (
	"sort"
	"time"

	"evalboard/domain/core"
	"evalboard/domain/injury"

	"github.com/montanaflynn/stats"
)

// Calculator evaluates KPIs against an injury log. Today is taken from the
// clock so ongoing injuries can be measured.
type Calculator struct {
	log   *injury.Log
	clock core.Clock
}

// NewCalculator creates a calculator; a nil clock means the system clock
func NewCalculator(log *injury.Log, clock core.Clock) *Calculator {
	if clock == nil {
		clock = core.SystemClock
	}
	if log == nil {
		log = &injury.Log{}
	}
	return &Calculator{log: log, clock: clock}
}

func (c *Calculator) today() time.Time {
	y, m, d := c.clock().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysOut returns how long r kept the player out: until clearance, or until
// today while active. Never negative.
func (c *Calculator) DaysOut(r injury.Record) int {
	end := c.today()
	if r.ClearedOn != nil {
		end = *r.ClearedOn
	}
	days := core.DaysBetween(r.OccurredOn, end)
	if days < 0 {
		return 0
	}
	return days
}

// PlayerSummary aggregates the KPI cards of one player
type PlayerSummary struct {
	Player   string          `json:"player"`
	Injuries int             `json:"injuries"`
	DaysOut  int             `json:"days_out"`
	Active   int             `json:"active"`
	Events   []string        `json:"events"`
	Records  []injury.Record `json:"records"`
}

// Summary returns the player's counts, accumulated days out and the event
// keys ordered most recent first.
func (c *Calculator) Summary(player string) PlayerSummary {
	records := c.log.ForPlayer(player)
	summary := PlayerSummary{Player: player, Records: records, Events: []string{}}
	for _, r := range records {
		summary.Injuries++
		summary.DaysOut += c.DaysOut(r)
		if r.Active() {
			summary.Active++
		}
	}
	for _, r := range byMostRecent(records) {
		summary.Events = append(summary.Events, r.EventKey())
	}
	return summary
}

// EventDays returns the days out for the event identified by key. When the
// key matches several records the most recent wins.
func (c *Calculator) EventDays(player, key string) (int, bool) {
	for _, r := range byMostRecent(c.log.ForPlayer(player)) {
		if r.EventKey() == key {
			return c.DaysOut(r), true
		}
	}
	return 0, false
}

// Count is a label with its number of injuries
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Ranking lists players by injury count, descending, ties broken by name.
// A non-positive limit returns everyone.
func (c *Calculator) Ranking(limit int) []Count {
	counts := make(map[string]int)
	for _, r := range c.log.Records {
		if r.Player != "" {
			counts[r.Player]++
		}
	}
	out := sortedCounts(counts)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ByRegion counts injuries per body region, descending
func (c *Calculator) ByRegion() []Count {
	counts := make(map[string]int)
	for _, r := range c.log.Records {
		region := r.Region
		if region == "" {
			region = "Sin región"
		}
		counts[region]++
	}
	return sortedCounts(counts)
}

// Monthly counts injuries per calendar month ("2006-01"), chronological
func (c *Calculator) Monthly() []Count {
	counts := make(map[string]int)
	for _, r := range c.log.Records {
		counts[r.OccurredOn.Format("2006-01")]++
	}
	out := make([]Count, 0, len(counts))
	for month, n := range counts {
		out = append(out, Count{Label: month, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func sortedCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func byMostRecent(records []injury.Record) []injury.Record {
	sorted := append([]injury.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredOn.After(sorted[j].OccurredOn)
	})
	return sorted
}

// RecoveryStats summarizes days out across cleared injuries
type RecoveryStats struct {
	Cleared int     `json:"cleared"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Max     float64 `json:"max"`
}

// Recovery describes the days out of every cleared injury in the log. All
// values are zero when nothing has been cleared yet.
func (c *Calculator) Recovery() RecoveryStats {
	var days stats.Float64Data
	for _, r := range c.log.Records {
		if !r.Active() {
			days = append(days, float64(c.DaysOut(r)))
		}
	}
	out := RecoveryStats{Cleared: len(days)}
	if len(days) == 0 {
		return out
	}
	out.Mean, _ = days.Mean()
	out.Median, _ = days.Median()
	out.Max, _ = days.Max()
	return out
}
