package app

import (
	"context"
	"strconv"
	"time"

	"evalboard/domain/core"
	"evalboard/domain/evaluation"
	"evalboard/domain/injury"
	"evalboard/internal"
	"evalboard/internal/cache"
	"evalboard/internal/engine"
	"evalboard/internal/errors"
	injurykpi "evalboard/internal/injury"
	"evalboard/internal/report"
	"evalboard/ports"

	"golang.org/x/sync/errgroup"
)

// DashboardOptions tunes memoization and time
type DashboardOptions struct {
	TableTTL     time.Duration
	StatsTTL     time.Duration
	ChartsTTL    time.Duration // group Z-score series
	SelectionTTL time.Duration // subject lists
	InjuryTTL    time.Duration
	Clock        core.Clock
}

// Dashboard answers every selection the UI, API and CLI make: categories,
// subjects, group statistics, bilateral profiles, player-vs-group
// comparisons, Z-scores and injury KPIs. It owns the caches; the engine it
// calls is stateless.
type Dashboard struct {
	tables   *cache.TableStore
	injuries ports.InjuryLoader
	catalog  *evaluation.Catalog
	resolver *engine.Resolver
	clock    core.Clock
	logger   *internal.Logger

	statsMemo   *cache.Memo[map[string]evaluation.GroupStatistics]
	chartsMemo  *cache.Memo[[]evaluation.ZScorePoint]
	subjectMemo *cache.Memo[[]string]
	injuryMemo  *cache.Memo[*injury.Log]
}

// NewDashboard wires a dashboard over the given loaders. injuries may be nil
// when no injury log is configured.
func NewDashboard(tables ports.TableLoader, injuries ports.InjuryLoader, catalog *evaluation.Catalog, opts DashboardOptions) *Dashboard {
	if opts.Clock == nil {
		opts.Clock = core.SystemClock
	}
	return &Dashboard{
		tables:      cache.NewTableStore(tables, opts.TableTTL, opts.Clock),
		injuries:    injuries,
		catalog:     catalog,
		resolver:    engine.NewResolver(catalog),
		clock:       opts.Clock,
		logger:      internal.DefaultLogger.With("Dashboard"),
		statsMemo:   cache.NewMemo[map[string]evaluation.GroupStatistics](opts.StatsTTL, opts.Clock),
		chartsMemo:  cache.NewMemo[[]evaluation.ZScorePoint](opts.ChartsTTL, opts.Clock),
		subjectMemo: cache.NewMemo[[]string](opts.SelectionTTL, opts.Clock),
		injuryMemo:  cache.NewMemo[*injury.Log](opts.InjuryTTL, opts.Clock),
	}
}

// Catalog returns the metric catalog
func (d *Dashboard) Catalog() *evaluation.Catalog {
	return d.catalog
}

// Warm loads the evaluation table and the injury log concurrently so the
// first request does not pay for either.
func (d *Dashboard) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := d.tables.Table(ctx)
		return err
	})
	g.Go(func() error {
		_, err := d.injuryLog(ctx)
		if err != nil {
			d.logger.Warn("injury log unavailable: %v", err)
		}
		return nil
	})
	return g.Wait()
}

// Reload loads the table again and drops every memoized result. Readers keep
// the previous snapshot until the new one is in; if the source cannot be
// read the error is returned and the previous snapshot keeps being served.
func (d *Dashboard) Reload(ctx context.Context) (*evaluation.Table, error) {
	table, err := d.tables.Reload(ctx)
	if err != nil {
		return nil, err
	}
	dropped := d.statsMemo.Clear() + d.chartsMemo.Clear() + d.subjectMemo.Clear() + d.injuryMemo.Clear()
	d.logger.Info("reload requested, %d memoized results dropped", dropped)
	return table, nil
}

// Purge drops expired memo entries
func (d *Dashboard) Purge() int {
	return d.statsMemo.Purge() + d.chartsMemo.Purge() + d.subjectMemo.Purge() + d.injuryMemo.Purge()
}

// RunJanitor purges expired memo entries every interval until ctx is done
func (d *Dashboard) RunJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := d.Purge(); n > 0 {
				d.logger.Debug("purged %d expired results", n)
			}
		}
	}
}

// Table returns the current evaluation table snapshot
func (d *Dashboard) Table(ctx context.Context) (*evaluation.Table, error) {
	return d.tables.Table(ctx)
}

// Categories lists the categories of the current table
func (d *Dashboard) Categories(ctx context.Context) ([]string, error) {
	table, err := d.tables.Table(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Categories(table), nil
}

// Subjects lists the real subjects of category; unknown categories are empty
func (d *Dashboard) Subjects(ctx context.Context, category string) ([]string, error) {
	table, err := d.tables.Table(ctx)
	if err != nil {
		return nil, err
	}
	key := core.ComputeSelectionKey(table.Version, category, nil, "subjects")
	return d.subjectMemo.Get(key, func() ([]string, error) {
		return engine.SubjectsInCategory(table, category), nil
	})
}

// Selection is a metric choice within an analysis section. An empty Metrics
// list selects the section defaults; an empty Section searches the whole
// catalog.
type Selection struct {
	Section string
	Metrics []string
}

// Resolve expands a selection into bilateral tuples in selection order.
// Unknown names are reported, not fatal, unless nothing resolves.
func (d *Dashboard) Resolve(sel Selection) ([]evaluation.BilateralMetric, []string, error) {
	names := sel.Metrics
	if len(names) == 0 {
		if sel.Section == "" {
			return nil, nil, errors.InvalidInput("a section or a metric list is required")
		}
		section, ok := d.catalog.Section(sel.Section)
		if !ok {
			return nil, nil, errors.InvalidInput("unknown section " + strconv.Quote(sel.Section))
		}
		names = section.DefaultSelection()
	}

	metrics, unknown := d.resolver.ResolveAll(names)
	if len(metrics) == 0 && len(unknown) > 0 {
		return nil, unknown, errors.UnknownMetric(unknown[0])
	}
	return metrics, unknown, nil
}

// SectionMetrics resolves every metric of a section
func (d *Dashboard) SectionMetrics(section string) ([]evaluation.BilateralMetric, error) {
	metrics := d.resolver.SectionMetrics(section)
	if metrics == nil {
		return nil, errors.InvalidInput("unknown section " + strconv.Quote(section))
	}
	return metrics, nil
}

// groupStats memoizes the statistics of category (optionally without one
// subject) per table version and column set.
func (d *Dashboard) groupStats(table *evaluation.Table, category, exclude string, metrics []evaluation.BilateralMetric) (map[string]evaluation.GroupStatistics, int, error) {
	rows := engine.FilterCategory(table, category)
	if exclude != "" {
		rows = engine.ExcludeSubject(rows, exclude)
	}

	pairs := evaluation.Pairs(metrics)
	columns := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		columns = append(columns, p.Columns()...)
	}

	key := core.ComputeSelectionKey(table.Version, category, columns, "exclude="+exclude)
	stats, err := d.statsMemo.Get(key, func() (map[string]evaluation.GroupStatistics, error) {
		d.logger.Debug("computing stats for %s (%d rows, %d columns)", category, len(rows), len(columns))
		return engine.ComputeGroupStats(rows, pairs), nil
	})
	return stats, len(rows), err
}

// GroupStatsResult is the statistics table of one category
type GroupStatsResult struct {
	Category  string                       `json:"category"`
	Version   core.TableVersion            `json:"version"`
	GroupSize int                          `json:"group_size"`
	Metrics   []evaluation.BilateralMetric `json:"metrics"`
	Unknown   []string                     `json:"unknown,omitempty"`
	Rows      []engine.GroupTableRow       `json:"rows"`
}

// GroupStats describes the selected metrics across the category's subjects
func (d *Dashboard) GroupStats(ctx context.Context, category string, sel Selection) (*GroupStatsResult, error) {
	metrics, unknown, err := d.Resolve(sel)
	if err != nil {
		return nil, err
	}
	table, err := d.tables.Table(ctx)
	if err != nil {
		return nil, err
	}

	stats, size, err := d.groupStats(table, category, "", metrics)
	if err != nil {
		return nil, err
	}
	return &GroupStatsResult{
		Category:  category,
		Version:   table.Version,
		GroupSize: size,
		Metrics:   metrics,
		Unknown:   unknown,
		Rows:      engine.GroupTable(stats, metrics),
	}, nil
}

// ProfileResult is one subject's bilateral profile
type ProfileResult struct {
	Category string                    `json:"category"`
	Subject  string                    `json:"subject"`
	Found    bool                      `json:"found"`
	Unknown  []string                  `json:"unknown,omitempty"`
	Readings []engine.BilateralReading `json:"readings"`
}

// Profile reads a subject's right/left values and LSI for the selection. An
// unknown subject yields Found=false and no readings.
func (d *Dashboard) Profile(ctx context.Context, category, subject string, sel Selection) (*ProfileResult, error) {
	metrics, unknown, err := d.Resolve(sel)
	if err != nil {
		return nil, err
	}
	table, err := d.tables.Table(ctx)
	if err != nil {
		return nil, err
	}

	result := &ProfileResult{Category: category, Subject: subject, Unknown: unknown, Readings: []engine.BilateralReading{}}
	row, ok := engine.FindSubject(engine.FilterCategory(table, category), subject)
	if !ok {
		return result, nil
	}
	result.Found = true
	result.Readings = engine.BuildProfile(row, metrics)
	return result, nil
}

// ComparisonRequest selects a player-vs-group comparison
type ComparisonRequest struct {
	Category       string
	Subject        string
	Selection      Selection
	ExcludeSubject bool // leave the subject out of the group baseline
}

// ComparisonResult holds the per (metric, side) deltas
type ComparisonResult struct {
	Category       string                        `json:"category"`
	Subject        string                        `json:"subject"`
	Found          bool                          `json:"found"`
	ExcludeSubject bool                          `json:"exclude_subject"`
	GroupSize      int                           `json:"group_size"`
	Unknown        []string                      `json:"unknown,omitempty"`
	Projection     evaluation.SubjectProjection  `json:"projection"`
	Records        []evaluation.ComparisonRecord `json:"records"`
}

// Comparison compares a subject against the group statistics of its category
func (d *Dashboard) Comparison(ctx context.Context, req ComparisonRequest) (*ComparisonResult, error) {
	metrics, unknown, err := d.Resolve(req.Selection)
	if err != nil {
		return nil, err
	}
	table, err := d.tables.Table(ctx)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		Category:       req.Category,
		Subject:        req.Subject,
		ExcludeSubject: req.ExcludeSubject,
		Unknown:        unknown,
		Projection:     evaluation.SubjectProjection{},
		Records:        []evaluation.ComparisonRecord{},
	}
	row, ok := engine.FindSubject(engine.FilterCategory(table, req.Category), req.Subject)
	if !ok {
		return result, nil
	}
	result.Found = true

	exclude := ""
	if req.ExcludeSubject {
		exclude = row.SubjectID
	}
	stats, size, err := d.groupStats(table, req.Category, exclude, metrics)
	if err != nil {
		return nil, err
	}

	result.GroupSize = size
	result.Projection = engine.ProjectSubject(row, evaluation.Pairs(metrics))
	result.Records = engine.Compare(result.Projection, stats, metrics)
	return result, nil
}

// SubjectZScores reads a subject's precomputed Z-scores. The bool is false
// when the subject is unknown.
func (d *Dashboard) SubjectZScores(ctx context.Context, category, subject string) ([]evaluation.ZScorePoint, bool, error) {
	table, err := d.tables.Table(ctx)
	if err != nil {
		return nil, false, err
	}
	row, ok := engine.FindSubject(engine.FilterCategory(table, category), subject)
	if !ok {
		return []evaluation.ZScorePoint{}, false, nil
	}
	return engine.ReadSubjectZScores(row, d.catalog.ZScores), true, nil
}

// GroupZScores averages the category's precomputed Z-scores over its real
// subjects; summary rows never contribute.
func (d *Dashboard) GroupZScores(ctx context.Context, category string) ([]evaluation.ZScorePoint, error) {
	table, err := d.tables.Table(ctx)
	if err != nil {
		return nil, err
	}
	columns := make([]string, len(d.catalog.ZScores))
	for i, z := range d.catalog.ZScores {
		columns[i] = z.Column
	}
	key := core.ComputeSelectionKey(table.Version, category, columns, "zscores")
	return d.chartsMemo.Get(key, func() ([]evaluation.ZScorePoint, error) {
		return engine.ReadGroupZScores(engine.FilterCategory(table, category), d.catalog.ZScores), nil
	})
}

func (d *Dashboard) injuryLog(ctx context.Context) (*injury.Log, error) {
	if d.injuries == nil {
		return &injury.Log{}, nil
	}
	return d.injuryMemo.Get(core.ComputeSelectionKey("", "injuries", nil), func() (*injury.Log, error) {
		return d.injuries.LoadInjuries(ctx)
	})
}

// Injuries returns a KPI calculator over the current injury log
func (d *Dashboard) Injuries(ctx context.Context) (*injurykpi.Calculator, error) {
	log, err := d.injuryLog(ctx)
	if err != nil {
		return nil, err
	}
	return injurykpi.NewCalculator(log, d.clock), nil
}

// PlayerReport gathers profile, comparison, Z-scores and injury KPIs of one
// subject. Injury data is optional: a missing log only drops that section.
func (d *Dashboard) PlayerReport(ctx context.Context, category, subject string, sel Selection) (*report.PlayerReport, error) {
	profile, err := d.Profile(ctx, category, subject, sel)
	if err != nil {
		return nil, err
	}
	if !profile.Found {
		return nil, errors.NotFound("subject " + strconv.Quote(subject) + " in category " + strconv.Quote(category))
	}

	comparison, err := d.Comparison(ctx, ComparisonRequest{Category: category, Subject: subject, Selection: sel, ExcludeSubject: true})
	if err != nil {
		return nil, err
	}
	zscores, _, err := d.SubjectZScores(ctx, category, subject)
	if err != nil {
		return nil, err
	}

	r := &report.PlayerReport{
		Subject:     profile.Subject,
		Category:    category,
		GeneratedAt: d.clock(),
		Profile:     profile.Readings,
		Comparison:  comparison.Records,
		ZScores:     zscores,
	}
	if calc, err := d.Injuries(ctx); err == nil {
		summary := calc.Summary(subject)
		r.Injuries = &summary
	} else {
		d.logger.Warn("report for %s without injuries: %v", subject, err)
	}
	return r, nil
}
