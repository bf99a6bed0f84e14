package engine

import (
	"evalboard/domain/evaluation"
)

// Resolver expands logical metric names into bilateral column tuples using
// the metric catalog.
type Resolver struct {
	catalog *evaluation.Catalog
}

// NewResolver creates a resolver over catalog
func NewResolver(catalog *evaluation.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns one tuple for a simple metric and one per phase for a
// composite one, each phase with its own LSI column. Unknown names resolve
// to nil.
func (r *Resolver) Resolve(name string) []evaluation.BilateralMetric {
	def, ok := r.catalog.Metric(name)
	if !ok {
		return nil
	}
	if def.IsComposite() {
		return append([]evaluation.BilateralMetric(nil), def.Phases...)
	}
	return []evaluation.BilateralMetric{{
		Label:     def.Name,
		Right:     def.Right,
		Left:      def.Left,
		LSIColumn: def.LSI,
	}}
}

// ResolveAll expands names in selection order. Names the catalog does not
// know are returned separately and contribute nothing.
func (r *Resolver) ResolveAll(names []string) (metrics []evaluation.BilateralMetric, unknown []string) {
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		resolved := r.Resolve(name)
		if resolved == nil {
			unknown = append(unknown, name)
			continue
		}
		metrics = append(metrics, resolved...)
	}
	return metrics, unknown
}

// SectionMetrics resolves every metric of a section in catalog order
func (r *Resolver) SectionMetrics(section string) []evaluation.BilateralMetric {
	s, ok := r.catalog.Section(section)
	if !ok {
		return nil
	}
	metrics, _ := r.ResolveAll(s.MetricNames())
	return metrics
}
