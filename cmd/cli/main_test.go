package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"evalboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATA_SOURCE", "synthetic")
	t.Setenv("METRICS_FILE", "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCategoriesCommand(t *testing.T) {
	out, err := run(t, "categories", "--json")
	require.NoError(t, err)

	var listing map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Len(t, listing["4ta"], 22)
	assert.Len(t, listing["Reserva"], 22)
	assert.NotContains(t, listing["4ta"], "MEDIA")
}

func TestStatsCommand(t *testing.T) {
	out, err := run(t, "stats", "4ta", "--section", "Movilidad")
	require.NoError(t, err)
	assert.Contains(t, out, "22 athletes")
	assert.Contains(t, out, "Der")
}

func TestCompareCommand(t *testing.T) {
	subject := testkit.PlayerName("4ta", 0)
	out, err := run(t, "compare", "4ta", subject, "--metrics", "IMTP,Sprint", "--json")
	require.NoError(t, err)

	var result struct {
		Found     bool     `json:"found"`
		GroupSize int      `json:"group_size"`
		Unknown   []string `json:"unknown"`
		Records   []struct {
			Side string `json:"side"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Found)
	assert.Equal(t, 21, result.GroupSize)
	assert.Equal(t, []string{"Sprint"}, result.Unknown)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "right", result.Records[0].Side)
}

func TestCompareUnknownAthlete(t *testing.T) {
	_, err := run(t, "compare", "4ta", "Nobody", "--metrics", "IMTP")
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	out, err := run(t, "report", "Reserva", testkit.PlayerName("Reserva", 3))
	require.NoError(t, err)
	assert.Contains(t, out, "# "+testkit.PlayerName("Reserva", 3))
	assert.Contains(t, out, "## Perfil bilateral")
}

func TestInjuriesCommand(t *testing.T) {
	out, err := run(t, "injuries", "--json", "--limit", "3")
	require.NoError(t, err)

	var squad struct {
		Ranking []struct {
			Label string `json:"label"`
			Count int    `json:"count"`
		} `json:"ranking"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &squad))
	assert.LessOrEqual(t, len(squad.Ranking), 3)
	for i := 1; i < len(squad.Ranking); i++ {
		assert.GreaterOrEqual(t, squad.Ranking[i-1].Count, squad.Ranking[i].Count)
	}
}
