package injury

import (
	"testing"
	"time"

	"evalboard/domain/injury"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(injury.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func fixedClock() time.Time { return time.Date(2025, 10, 24, 15, 30, 0, 0, time.UTC) }

func sampleLog() *injury.Log {
	return &injury.Log{Records: []injury.Record{
		{Player: "Perez", OccurredOn: day("2025-03-01"), ClearedOn: dayPtr("2025-03-15"), Type: "Desgarro", Region: "Isquiotibial"},
		{Player: "Perez", OccurredOn: day("2025-10-20"), Type: "Esguince", Region: "Tobillo"},
		{Player: "Gomez", OccurredOn: day("2025-03-10"), ClearedOn: dayPtr("2025-04-09"), Type: "Contractura", Region: "Isquiotibial"},
		{Player: "Diaz", OccurredOn: day("2025-05-02"), ClearedOn: dayPtr("2025-05-01"), Type: "Golpe", Region: "Rodilla"},
		{Player: "Perez", OccurredOn: day("2025-05-02"), ClearedOn: dayPtr("2025-05-12"), Type: "Golpe", Region: "Rodilla"},
	}}
}

func TestPlayerSummary(t *testing.T) {
	calc := NewCalculator(sampleLog(), fixedClock)

	s := calc.Summary("Perez")
	assert.Equal(t, 3, s.Injuries)
	assert.Equal(t, 1, s.Active)
	assert.Equal(t, 14+4+10, s.DaysOut)
	assert.Equal(t, []string{
		"2025-10-20 — Esguince (Tobillo)",
		"2025-05-02 — Golpe (Rodilla)",
		"2025-03-01 — Desgarro (Isquiotibial)",
	}, s.Events)

	empty := calc.Summary("Nadie")
	assert.Zero(t, empty.Injuries)
	assert.Empty(t, empty.Events)
}

func TestDaysOutClampsNegative(t *testing.T) {
	calc := NewCalculator(sampleLog(), fixedClock)
	s := calc.Summary("Diaz")
	assert.Equal(t, 0, s.DaysOut)
}

func TestEventDays(t *testing.T) {
	calc := NewCalculator(sampleLog(), fixedClock)

	days, ok := calc.EventDays("Perez", "2025-03-01 — Desgarro (Isquiotibial)")
	require.True(t, ok)
	assert.Equal(t, 14, days)

	days, ok = calc.EventDays("Perez", "2025-10-20 — Esguince (Tobillo)")
	require.True(t, ok)
	assert.Equal(t, 4, days, "active injury counts until today")

	_, ok = calc.EventDays("Gomez", "2025-03-01 — Desgarro (Isquiotibial)")
	assert.False(t, ok)
}

func TestSquadAggregates(t *testing.T) {
	calc := NewCalculator(sampleLog(), fixedClock)

	assert.Equal(t, []Count{{"Perez", 3}, {"Diaz", 1}, {"Gomez", 1}}, calc.Ranking(10))
	assert.Equal(t, []Count{{"Perez", 3}}, calc.Ranking(1))

	assert.Equal(t, []Count{{"Isquiotibial", 2}, {"Rodilla", 2}, {"Tobillo", 1}}, calc.ByRegion())

	assert.Equal(t, []Count{{"2025-03", 2}, {"2025-05", 2}, {"2025-10", 1}}, calc.Monthly())
}

func TestRecovery(t *testing.T) {
	r := NewCalculator(sampleLog(), fixedClock).Recovery()
	assert.Equal(t, 4, r.Cleared)
	assert.InDelta(t, (14.0+30+0+10)/4, r.Mean, 1e-9)
	assert.Equal(t, 12.0, r.Median)
	assert.Equal(t, 30.0, r.Max)

	assert.Equal(t, RecoveryStats{}, NewCalculator(nil, fixedClock).Recovery())
}
