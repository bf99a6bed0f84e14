package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"evalboard/domain/evaluation"
	"evalboard/domain/injury"
	"evalboard/internal/engine"
)

// SquadGeneratorConfig configures the synthetic evaluation generator
type SquadGeneratorConfig struct {
	Categories         []string  `json:"categories"`
	PlayersPerCategory int       `json:"players_per_category"`
	MissingRate        float64   `json:"missing_rate"`         // share of cells left empty
	PlaceholderRate    float64   `json:"placeholder_rate"`     // share of Z-score cells holding "-"
	IncludeSummaryRows bool      `json:"include_summary_rows"` // append MEDIA and SD rows like the club sheets
	InjuryRate         float64   `json:"injury_rate"`          // expected injuries per player
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Seed               int64     `json:"seed"`
}

// DefaultSquadConfig returns sensible defaults for squad data generation
func DefaultSquadConfig() SquadGeneratorConfig {
	return SquadGeneratorConfig{
		Categories:         []string{"4ta", "Reserva"},
		PlayersPerCategory: 22,
		MissingRate:        0.05,
		PlaceholderRate:    0.05,
		IncludeSummaryRows: true,
		InjuryRate:         1.2,
		StartDate:          time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC),
		Seed:               42,
	}
}

// SquadDataGenerator generates evaluation tables and injury logs shaped like
// the club's workbook
type SquadDataGenerator struct {
	config  SquadGeneratorConfig
	catalog *evaluation.Catalog
	rng     *rand.Rand
}

// NewSquadDataGenerator creates a generator over the columns of catalog
func NewSquadDataGenerator(config SquadGeneratorConfig, catalog *evaluation.Catalog) *SquadDataGenerator {
	return &SquadDataGenerator{
		config:  config,
		catalog: catalog,
		rng:     rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	firstNames = []string{"Juan", "Lucas", "Mateo", "Tomás", "Bruno", "Nicolás", "Franco", "Lautaro", "Facundo", "Agustín", "Gonzalo", "Santiago"}
	lastNames  = []string{"Perez", "Gomez", "Diaz", "Fernandez", "Lopez", "Martinez", "Romero", "Sosa", "Alvarez", "Benitez", "Acosta", "Rojas"}

	injuryTypes   = []string{"Desgarro", "Contractura", "Esguince", "Sobrecarga", "Tendinopatía", "Golpe"}
	injuryRegions = []string{"Isquiotibial", "Cuádriceps", "Tobillo", "Rodilla", "Aductor", "Gemelo"}
)

// PlayerName returns the deterministic name of player i of a category
func PlayerName(category string, i int) string {
	return fmt.Sprintf("%s %s %s-%02d", lastNames[i%len(lastNames)], firstNames[(i/len(lastNames)+i)%len(firstNames)], category, i+1)
}

// columnSpec drives the distribution of one generated column. A positive
// step snaps values to a 0-3 functional score.
type columnSpec struct {
	column string
	mean   float64
	sd     float64
	step   float64
}

func profileFor(unit string) (mean, sd, step float64) {
	switch unit {
	case "N":
		return 1800, 250, 0
	case "°":
		return 110, 12, 0
	default:
		return 2, 0.7, 1
	}
}

// GenerateTable builds a table with every column the catalog references
func (g *SquadDataGenerator) GenerateTable() *evaluation.Table {
	resolver := engine.NewResolver(g.catalog)
	columns := []string{"Deportista"}
	var specs []columnSpec
	var withLSI []evaluation.BilateralMetric

	for _, s := range g.catalog.Sections {
		for _, m := range s.Metrics {
			mean, sd, step := profileFor(m.Unit)
			for _, p := range resolver.Resolve(m.Name) {
				specs = append(specs, columnSpec{p.Right, mean, sd, step}, columnSpec{p.Left, mean, sd, step})
				columns = append(columns, p.Right, p.Left)
				if p.LSIColumn != "" {
					withLSI = append(withLSI, p)
					columns = append(columns, p.LSIColumn)
				}
			}
		}
	}
	for _, z := range g.catalog.ZScores {
		columns = append(columns, z.Column)
	}

	var rows []evaluation.Row
	for _, category := range g.config.Categories {
		var group []evaluation.Row
		for i := 0; i < g.config.PlayersPerCategory; i++ {
			group = append(group, g.generatePlayer(category, i, specs, withLSI))
		}
		rows = append(rows, group...)

		if g.config.IncludeSummaryRows {
			rows = append(rows, summaryRows(category, group, specs)...)
		}
	}

	return evaluation.NewTable("synthetic", columns, rows)
}

func (g *SquadDataGenerator) generatePlayer(category string, i int, specs []columnSpec, withLSI []evaluation.BilateralMetric) evaluation.Row {
	row := evaluation.NewRow(category, PlayerName(category, i))
	row.Set("Deportista", evaluation.TextCell(row.SubjectID))

	for _, sp := range specs {
		if g.rng.Float64() < g.config.MissingRate {
			continue
		}
		v := sp.mean + g.rng.NormFloat64()*sp.sd
		if sp.step > 0 {
			v = math.Max(0, math.Min(3, math.Round(v/sp.step)*sp.step))
		}
		row.Set(sp.column, evaluation.NumberCell(math.Round(v*10)/10))
	}

	for _, m := range withLSI {
		right, okR := row.StrictNumber(m.Right)
		left, okL := row.StrictNumber(m.Left)
		if okR && okL && right > 0 {
			row.Set(m.LSIColumn, evaluation.NumberCell(math.Round(left/right*1000)/10))
		}
	}

	for _, z := range g.catalog.ZScores {
		if g.rng.Float64() < g.config.PlaceholderRate {
			row.Set(z.Column, evaluation.TextCell("-"))
			continue
		}
		row.Set(z.Column, evaluation.NumberCell(math.Round(g.rng.NormFloat64()*100)/100))
	}
	return row
}

// summaryRows mimics the MEDIA and SD rows the club appends under each squad
func summaryRows(category string, group []evaluation.Row, specs []columnSpec) []evaluation.Row {
	media := evaluation.NewRow(category, "MEDIA")
	sd := evaluation.NewRow(category, "SD")
	for _, sp := range specs {
		s := engine.Describe(sp.column, engine.ColumnValues(group, sp.column))
		if s.Count > 0 {
			media.Set(sp.column, evaluation.NumberCell(evaluation.Round1(s.Mean)))
		}
		if s.Count > 1 {
			sd.Set(sp.column, evaluation.NumberCell(evaluation.Round1(s.Std)))
		}
	}
	return []evaluation.Row{media, sd}
}

// GenerateInjuries builds an injury log for the players GenerateTable names.
// About one injury in eight is still active.
func (g *SquadDataGenerator) GenerateInjuries() *injury.Log {
	log := &injury.Log{}
	span := int(g.config.EndDate.Sub(g.config.StartDate).Hours() / 24)
	if span <= 0 {
		return log
	}

	for _, category := range g.config.Categories {
		for i := 0; i < g.config.PlayersPerCategory; i++ {
			n := g.poisson(g.config.InjuryRate)
			for k := 0; k < n; k++ {
				occurred := g.config.StartDate.AddDate(0, 0, g.rng.Intn(span))
				record := injury.Record{
					Player:     PlayerName(category, i),
					OccurredOn: occurred,
					Type:       injuryTypes[g.rng.Intn(len(injuryTypes))],
					Region:     injuryRegions[g.rng.Intn(len(injuryRegions))],
				}
				if g.rng.Float64() >= 0.125 {
					cleared := occurred.AddDate(0, 0, 3+g.rng.Intn(40))
					record.ClearedOn = &cleared
				}
				log.Records = append(log.Records, record)
			}
		}
	}
	return log
}

// poisson draws with Knuth's method; rates here are small
func (g *SquadDataGenerator) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= g.rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
