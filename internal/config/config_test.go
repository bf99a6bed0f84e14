package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"evalboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_SOURCE", "")
	t.Setenv("EVALUATION_SHEETS", "")
	t.Setenv("HEADER_ROW", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceFile, cfg.Data.Source)
	assert.Equal(t, 2, cfg.Data.HeaderRow)
	assert.Equal(t, "Deportista", cfg.Data.SubjectColumn)
	assert.Equal(t, []SheetMapping{
		{Sheet: "2005-06 (4ta)", Category: "4ta"},
		{Sheet: "RESERVA", Category: "Reserva"},
	}, cfg.Data.Sheets)
	assert.Equal(t, time.Hour, cfg.Cache.TableTTL)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_SOURCE", "SQL")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("CACHE_TTL_STATS", "120")
	t.Setenv("CACHE_TTL_TABLE", "10m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SourceSQL, cfg.Data.Source)
	assert.Equal(t, 2*time.Minute, cfg.Cache.StatsTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TableTTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("DATA_SOURCE", "sql")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	t.Setenv("DATA_SOURCE", "ftp")
	_, err = Load()
	assert.Error(t, err)
}

func TestParseSheets(t *testing.T) {
	sheets, err := ParseSheets(" A = 1ra , RESERVA ")
	require.NoError(t, err)
	assert.Equal(t, []SheetMapping{{Sheet: "A", Category: "1ra"}, {Sheet: "RESERVA", Category: "RESERVA"}}, sheets)

	_, err = ParseSheets(" , ")
	assert.Error(t, err)

	_, err = ParseSheets("=4ta")
	assert.Error(t, err)
}

func TestDefaultMetricCatalog(t *testing.T) {
	catalog, err := DefaultMetricCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"Fuerza", "Movilidad", "Funcionalidad"}, catalog.SectionNames())

	fuerza, ok := catalog.Section("Fuerza")
	require.True(t, ok)
	assert.Equal(t, []string{"CUAD 70°", "ISQ Wollin", "IMTP"}, fuerza.DefaultSelection())

	cmj, ok := catalog.Metric("CMJ")
	require.True(t, ok)
	require.True(t, cmj.IsComposite())
	assert.Equal(t, "CMJ F. Der (N).1", cmj.Phases[1].Right)
	assert.Equal(t, "CMJ FF LSI (%) I/D", cmj.Phases[1].LSIColumn)

	movilidad, _ := catalog.Section("Movilidad")
	assert.Len(t, movilidad.Metrics, 6)
	funcionalidad, _ := catalog.Section("Funcionalidad")
	assert.Len(t, funcionalidad.Metrics, 6)

	require.Len(t, catalog.ZScores, 10)
	assert.Equal(t, "Z SCORE CUAD Der", catalog.ZScores[0].Column)
	assert.Equal(t, "CMJ FF Izq", catalog.ZScores[9].Label)
}

func TestLoadMetricCatalogFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sections:
  - name: Sprint
    metrics:
      - {name: Salto, right: Salto Der, left: Salto Izq}
`), 0o644))

	catalog, err := LoadMetricCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sprint"}, catalog.SectionNames())

	require.NoError(t, os.WriteFile(path, []byte("sections:\n  - name: Sprint\n    metrics:\n      - {name: Salto, right: Salto Der}\n"), 0o644))
	_, err = LoadMetricCatalog(path)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	_, err = LoadMetricCatalog(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}
