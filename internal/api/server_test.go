package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"evalboard/app"
	"evalboard/domain/evaluation"
	"evalboard/domain/injury"
	"evalboard/internal/errors"
	"evalboard/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiCatalog() *evaluation.Catalog {
	return &evaluation.Catalog{
		Sections: []evaluation.Section{{
			Name:    "Fuerza",
			Metrics: []evaluation.MetricDefinition{{Name: "M", Right: "M Der", Left: "M Izq"}},
		}},
		ZScores: []evaluation.ZScoreColumn{{Column: "Z1", Label: "Z uno"}},
	}
}

func apiTable() *evaluation.Table {
	rows := []evaluation.Row{
		evaluation.NewRow("4ta", "Perez Juan"),
		evaluation.NewRow("4ta", "Gomez Lucas"),
		evaluation.NewRow("4ta", "MEDIA"),
	}
	rows[0].Set("M Der", evaluation.NumberCell(100))
	rows[0].Set("M Izq", evaluation.NumberCell(80))
	rows[0].Set("Z1", evaluation.NumberCell(1.5))
	rows[1].Set("M Der", evaluation.NumberCell(120))
	rows[1].Set("M Izq", evaluation.NumberCell(90))
	rows[1].Set("Z1", evaluation.TextCell("-"))
	rows[2].Set("M Der", evaluation.NumberCell(110))
	return evaluation.NewTable("test", []string{"M Der", "M Izq", "Z1"}, rows)
}

func newTestServer(t *testing.T, tables *testkit.StaticTableLoader) *Server {
	t.Helper()
	cleared := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)
	log := &injury.Log{Records: []injury.Record{
		{Player: "Perez Juan", OccurredOn: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), ClearedOn: &cleared, Type: "Desgarro", Region: "Isquiotibial"},
		{Player: "Perez Juan", OccurredOn: time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), Type: "Esguince", Region: "Tobillo"},
		{Player: "Gomez Lucas", OccurredOn: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), Type: "Golpe", Region: ""},
	}}
	clock := func() time.Time { return time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC) }
	d := app.NewDashboard(tables, &testkit.StaticInjuryLoader{Log: log}, apiCatalog(), app.DashboardOptions{
		TableTTL: time.Hour, StatsTTL: time.Hour, InjuryTTL: time.Hour, Clock: clock,
	})
	return NewServer(d)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &testkit.StaticTableLoader{Table: apiTable()})
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestServer(t, &testkit.StaticTableLoader{Err: errors.DataUnavailable("no workbook", nil)})
	rec = get(t, down, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReload(t *testing.T) {
	tables := &testkit.StaticTableLoader{Table: apiTable()}
	s := newTestServer(t, tables)
	require.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)

	tables.Table = apiTable()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "reloaded", body.Status)
	assert.Equal(t, tables.Table.Version.String(), body.Version)

	assert.Equal(t, http.StatusMethodNotAllowed, get(t, s, "/api/reload").Code)
}

func TestReloadUnreadableSource(t *testing.T) {
	tables := &testkit.StaticTableLoader{Table: apiTable()}
	s := newTestServer(t, tables)
	require.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
	version := tables.Table.Version.String()

	tables.Err = errors.DataUnavailable("cannot open workbook", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reload", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Code string `json:"code"`
	}
	decode(t, rec, &body)
	assert.Equal(t, errors.CodeDataUnavailable, body.Code)

	// reads keep the table loaded before the failure
	var health struct {
		Version string `json:"version"`
	}
	rec = get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &health)
	assert.Equal(t, version, health.Version)
}

func TestCategoriesAndSubjects(t *testing.T) {
	s := newTestServer(t, &testkit.StaticTableLoader{Table: apiTable()})

	var categories []string
	rec := get(t, s, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &categories)
	assert.Equal(t, []string{"4ta"}, categories)

	var subjects []string
	rec = get(t, s, "/api/categories/4ta/subjects")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &subjects)
	assert.Equal(t, []string{"Perez Juan", "Gomez Lucas"}, subjects)
}

func TestGroupStatsEndpoint(t *testing.T) {
	s := newTestServer(t, &testkit.StaticTableLoader{Table: apiTable()})

	rec := get(t, s, "/api/categories/4ta/stats?metrics=M")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		GroupSize int `json:"group_size"`
		Rows      []struct {
			Side  string `json:"side"`
			Stats struct {
				Mean *float64 `json:"mean"`
				Std  *float64 `json:"std"`
			} `json:"stats"`
		} `json:"rows"`
	}
	decode(t, rec, &body)
	assert.Equal(t, 2, body.GroupSize)
	require.Len(t, body.Rows, 2)
	require.NotNil(t, body.Rows[0].Stats.Mean)
	assert.InDelta(t, 110.0, *body.Rows[0].Stats.Mean, 1e-9)
	// sample std of 100 and 120 is 14.142..., served at one decimal
	require.NotNil(t, body.Rows[0].Stats.Std)
	assert.Equal(t, 14.1, *body.Rows[0].Stats.Std)

	rec = get(t, s, "/api/categories/4ta/stats?metrics=Sprint")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparisonEndpoint(t *testing.T) {
	s := newTestServer(t, &testkit.StaticTableLoader{Table: apiTable()})

	rec := get(t, s, "/api/categories/4ta/subjects/Perez%20Juan/comparison?metrics=M&exclude_subject=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Found   bool                          `json:"found"`
		Records []evaluation.ComparisonRecord `json:"records"`
	}
	decode(t, rec, &body)
	assert.True(t, body.Found)
	require.Len(t, body.Records, 2)
	assert.Equal(t, 120.0, body.Records[0].GroupMean)
	assert.Equal(t, -20.0, body.Records[0].Difference)

	rec = get(t, s, "/api/categories/4ta/subjects/Perez%20Juan/comparison?metrics=M&exclude_subject=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubjectZScoresEndpoint(t *testing.T) {
	s := newTestServer(t, &testkit.StaticTableLoader{Table: apiTable()})

	var body struct {
		Found  bool                     `json:"found"`
		Points []evaluation.ZScorePoint `json:"points"`
	}
	rec := get(t, s, "/api/categories/4ta/subjects/Gomez%20Lucas/zscores")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.True(t, body.Found)
	assert.Empty(t, body.Points)

	rec = get(t, s, "/api/categories/4ta/zscores")
	require.Equal(t, http.StatusOK, rec.Code)
	var group []evaluation.ZScorePoint
	decode(t, rec, &group)
	require.Len(t, group, 1)
	assert.Equal(t, 1.5, group[0].Raw)
}

func TestInjuryEndpoints(t *testing.T) {
	s := newTestServer(t, &testkit.StaticTableLoader{Table: apiTable()})

	rec := get(t, s, "/api/injuries/players/Perez%20Juan")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		Injuries int `json:"injuries"`
		DaysOut  int `json:"days_out"`
		Active   int `json:"active"`
	}
	decode(t, rec, &summary)
	assert.Equal(t, 2, summary.Injuries)
	assert.Equal(t, 19+14, summary.DaysOut)
	assert.Equal(t, 1, summary.Active)

	var ranking []struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}
	rec = get(t, s, "/api/injuries/ranking?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &ranking)
	require.Len(t, ranking, 1)
	assert.Equal(t, "Perez Juan", ranking[0].Label)

	rec = get(t, s, "/api/injuries/ranking?limit=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/api/injuries/players/Perez%20Juan/days?event=2025-09-01%20%E2%80%94%20Desgarro%20(Isquiotibial)")
	require.Equal(t, http.StatusOK, rec.Code)
	var days struct {
		Days int `json:"days"`
	}
	decode(t, rec, &days)
	assert.Equal(t, 19, days.Days)

	rec = get(t, s, "/api/injuries/players/Perez%20Juan/days?event=nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(errors.DataUnavailable("x", nil)))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.UnknownMetric("x")))
	assert.Equal(t, http.StatusNotFound, statusFor(errors.NotFound("x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.InternalError("x")))
}
