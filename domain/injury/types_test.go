package injury

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2025-03-01", "2025-03-01 00:00:00", "01/03/2025"} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *d, in)
	}

	for _, in := range []string{"", "  ", "NaT", "nan"} {
		d, err := ParseDate(in)
		assert.NoError(t, err)
		assert.Nil(t, d)
	}

	_, err := ParseDate("ayer")
	assert.Error(t, err)
}

func TestRecordEventKeyAndLog(t *testing.T) {
	r := Record{Player: "Perez", OccurredOn: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Type: "Desgarro", Region: "Isquiotibial"}
	assert.Equal(t, "2025-03-01 — Desgarro (Isquiotibial)", r.EventKey())
	assert.True(t, r.Active())

	log := &Log{Records: []Record{r, {Player: "Gomez"}}}
	assert.Len(t, log.ForPlayer(" Perez "), 1)
	assert.Empty(t, (*Log)(nil).ForPlayer("Perez"))
}
