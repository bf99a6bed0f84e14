package testkit

import (
	"context"
	"log"
	"sync"

	"evalboard/domain/evaluation"
	"evalboard/domain/injury"
	"evalboard/ports"
)

// TestKit provides testing utilities and fixtures: synthetic squads and
// in-memory loaders that stand in for the workbook and the database.
type TestKit struct {
	catalog  *evaluation.Catalog
	config   SquadGeneratorConfig
	once     sync.Once
	table    *evaluation.Table
	injuries *injury.Log
}

// NewTestKit creates a new test kit generating data over catalog
func NewTestKit(catalog *evaluation.Catalog, config SquadGeneratorConfig) *TestKit {
	return &TestKit{catalog: catalog, config: config}
}

func (t *TestKit) generate() {
	t.once.Do(func() {
		gen := NewSquadDataGenerator(t.config, t.catalog)
		t.table = gen.GenerateTable()
		t.injuries = gen.GenerateInjuries()
		log.Printf("[TestKit] Generated %d evaluation rows and %d injuries (seed %d)",
			len(t.table.Rows), len(t.injuries.Records), t.config.Seed)
	})
}

// Table returns the generated table; repeated calls return the same snapshot
func (t *TestKit) Table() *evaluation.Table {
	t.generate()
	return t.table
}

// Injuries returns the generated injury log
func (t *TestKit) Injuries() *injury.Log {
	t.generate()
	return t.injuries
}

// TableLoader serves the generated table
func (t *TestKit) TableLoader() ports.TableLoader {
	return &StaticTableLoader{Table: t.Table()}
}

// InjuryLoader serves the generated injury log
func (t *TestKit) InjuryLoader() ports.InjuryLoader {
	return &StaticInjuryLoader{Log: t.Injuries()}
}

// StaticTableLoader returns a fixed table, or Err when set
type StaticTableLoader struct {
	Table *evaluation.Table
	Err   error
}

// LoadTable implements ports.TableLoader
func (l *StaticTableLoader) LoadTable(ctx context.Context) (*evaluation.Table, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Table, nil
}

// StaticInjuryLoader returns a fixed injury log, or Err when set
type StaticInjuryLoader struct {
	Log *injury.Log
	Err error
}

// LoadInjuries implements ports.InjuryLoader
func (l *StaticInjuryLoader) LoadInjuries(ctx context.Context) (*injury.Log, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	if l.Log == nil {
		return &injury.Log{}, nil
	}
	return l.Log, nil
}
