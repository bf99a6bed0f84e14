package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log"
	"time"

	"evalboard/domain/core"
	"evalboard/domain/evaluation"
	"evalboard/domain/injury"
	"evalboard/internal/errors"
	"evalboard/ports"

	"github.com/jmoiron/sqlx"
)

// fixed width so lexical order on loaded_at is chronological
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements ports.TableStore over sqlx
type Store struct {
	db *sqlx.DB
}

// NewStore creates a store on an opened, migrated database
func NewStore(db *sqlx.DB) ports.TableStore {
	return &Store{db: db}
}

// SaveTable stores a table snapshot with all of its raw rows
func (s *Store) SaveTable(ctx context.Context, table *evaluation.Table) error {
	if table == nil {
		return errors.InvalidInput("table is required")
	}
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	version := table.Version.String()
	if table.Version.IsEmpty() {
		version = core.NewTableVersion().String()
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO evaluation_tables (id, source, loaded_at, columns)
		VALUES (?, ?, ?, ?)
	`), version, table.Source, table.LoadedAt.UTC().Format(timestampLayout), jsonText[[]string]{V: table.Columns})
	if err != nil {
		return errors.DatabaseError("failed to insert evaluation table", err)
	}

	insertRow := tx.Rebind(`
		INSERT INTO evaluation_rows (id, table_id, position, category, subject, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for i, row := range table.Rows {
		payload := make(map[string]string, len(row.Cells))
		for col, cell := range row.Cells {
			if !cell.IsMissing() {
				payload[col] = cell.Raw()
			}
		}
		if _, err := tx.ExecContext(ctx, insertRow, core.NewID().String(), version, i, row.Category, row.SubjectID, jsonText[map[string]string]{V: payload}); err != nil {
			return errors.DatabaseError("failed to insert evaluation row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit evaluation table", err)
	}
	log.Printf("[SQLStore] Saved table %s (%d rows) in %.2fms", version, len(table.Rows), float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// LoadTable returns the most recently loaded snapshot
func (s *Store) LoadTable(ctx context.Context) (*evaluation.Table, error) {
	var rec tableRecord
	err := s.db.GetContext(ctx, &rec, `
		SELECT id, source, loaded_at, columns
		FROM evaluation_tables
		ORDER BY loaded_at DESC
		LIMIT 1
	`)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DataUnavailable("no evaluation table has been imported", err)
	}
	if err != nil {
		return nil, errors.DataUnavailable("failed to read evaluation table", err)
	}

	var rows []rowRecord
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, table_id, position, category, subject, payload
		FROM evaluation_rows
		WHERE table_id = ?
		ORDER BY position
	`), rec.ID)
	if err != nil {
		return nil, errors.DataUnavailable("failed to read evaluation rows", err)
	}

	table := &evaluation.Table{
		Version: core.TableVersion(rec.ID),
		Source:  rec.Source,
		Columns: rec.Columns.V,
		Rows:    make([]evaluation.Row, 0, len(rows)),
	}
	if loadedAt, err := time.Parse(timestampLayout, rec.LoadedAt); err == nil {
		table.LoadedAt = loadedAt
	}

	for _, r := range rows {
		row := evaluation.NewRow(r.Category, r.Subject)
		for _, col := range table.Columns {
			row.Set(col, evaluation.ParseCell(r.Payload.V[col]))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// SaveInjuries replaces the stored injury log
func (s *Store) SaveInjuries(ctx context.Context, injuries *injury.Log) error {
	if injuries == nil {
		return errors.InvalidInput("injury log is required")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM injuries`); err != nil {
		return errors.DatabaseError("failed to clear injuries", err)
	}

	insert := tx.Rebind(`
		INSERT INTO injuries (id, position, player, occurred_on, cleared_on, injury_type, region)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for i, r := range injuries.Records {
		var cleared sql.NullString
		if r.ClearedOn != nil {
			cleared = sql.NullString{String: r.ClearedOn.Format(injury.DateLayout), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, insert, core.NewID().String(), i, r.Player, r.OccurredOn.Format(injury.DateLayout), cleared, r.Type, r.Region); err != nil {
			return errors.DatabaseError("failed to insert injury", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit injuries", err)
	}
	return nil
}

// LoadInjuries returns the stored injury log in import order
func (s *Store) LoadInjuries(ctx context.Context) (*injury.Log, error) {
	var records []injuryRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, position, player, occurred_on, cleared_on, injury_type, region
		FROM injuries
		ORDER BY position
	`)
	if err != nil {
		return nil, errors.DataUnavailable("failed to read injuries", err)
	}

	out := &injury.Log{Records: make([]injury.Record, 0, len(records))}
	for _, rec := range records {
		occurred, err := injury.ParseDate(rec.OccurredOn)
		if err != nil || occurred == nil {
			log.Printf("[SQLStore] Skipping injury %s: bad date %q", rec.ID, rec.OccurredOn)
			continue
		}
		var cleared *time.Time
		if rec.ClearedOn.Valid {
			cleared, err = injury.ParseDate(rec.ClearedOn.String)
			if err != nil {
				log.Printf("[SQLStore] Skipping injury %s: bad clearance date %q", rec.ID, rec.ClearedOn.String)
				continue
			}
		}
		out.Records = append(out.Records, injury.Record{
			Player:     rec.Player,
			OccurredOn: *occurred,
			ClearedOn:  cleared,
			Type:       rec.Type,
			Region:     rec.Region,
		})
	}
	return out, nil
}
