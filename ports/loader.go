package ports

import (
	"context"

	"evalboard/domain/evaluation"
	"evalboard/domain/injury"
)

// TableLoader supplies the evaluation table. Implementations must return an
// error carrying the DATA_UNAVAILABLE code when the source is missing,
// unreadable or lacks a required sheet.
type TableLoader interface {
	LoadTable(ctx context.Context) (*evaluation.Table, error)
}

// InjuryLoader supplies the injury log
type InjuryLoader interface {
	LoadInjuries(ctx context.Context) (*injury.Log, error)
}

// TableStore persists raw evaluation rows and injury records. Computed
// aggregates are never stored.
type TableStore interface {
	TableLoader
	InjuryLoader
	SaveTable(ctx context.Context, table *evaluation.Table) error
	SaveInjuries(ctx context.Context, log *injury.Log) error
}
