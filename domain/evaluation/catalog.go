package evaluation

import (
	"fmt"
	"strings"
)

// MetricDefinition is one selectable metric of a section. Simple metrics use
// Right/Left/LSI; composite metrics list their phases instead.
type MetricDefinition struct {
	Name   string            `json:"name" yaml:"name"`
	Right  string            `json:"right,omitempty" yaml:"right"`
	Left   string            `json:"left,omitempty" yaml:"left"`
	LSI    string            `json:"lsi,omitempty" yaml:"lsi"`
	Unit   string            `json:"unit,omitempty" yaml:"unit"`
	Phases []BilateralMetric `json:"phases,omitempty" yaml:"phases"`
}

// IsComposite reports whether the metric decomposes into sub-phases
func (m MetricDefinition) IsComposite() bool {
	return len(m.Phases) > 0
}

// Section groups the metrics of one analysis area (Fuerza, Movilidad, ...)
type Section struct {
	Name     string             `json:"name" yaml:"name"`
	Metrics  []MetricDefinition `json:"metrics" yaml:"metrics"`
	Defaults []string           `json:"defaults,omitempty" yaml:"defaults"`
}

// MetricNames lists the section's metric names in catalog order
func (s Section) MetricNames() []string {
	names := make([]string, 0, len(s.Metrics))
	for _, m := range s.Metrics {
		names = append(names, m.Name)
	}
	return names
}

// DefaultSelection returns Defaults, or every metric when none are configured
func (s Section) DefaultSelection() []string {
	if len(s.Defaults) > 0 {
		return append([]string(nil), s.Defaults...)
	}
	return s.MetricNames()
}

// ZScoreColumn maps a precomputed Z-score column to its chart label
type ZScoreColumn struct {
	Column string `json:"column" yaml:"column"`
	Label  string `json:"label" yaml:"label"`
}

// Catalog is the static metric configuration
type Catalog struct {
	Sections []Section     `json:"sections" yaml:"sections"`
	ZScores  []ZScoreColumn `json:"zscores" yaml:"zscores"`
}

// Section looks a section up by name (case-insensitive)
func (c *Catalog) Section(name string) (Section, bool) {
	for _, s := range c.Sections {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Section{}, false
}

// Metric looks a metric up by name across all sections
func (c *Catalog) Metric(name string) (MetricDefinition, bool) {
	for _, s := range c.Sections {
		for _, m := range s.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return MetricDefinition{}, false
}

// SectionNames lists sections in catalog order
func (c *Catalog) SectionNames() []string {
	names := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		names = append(names, s.Name)
	}
	return names
}

// Validate checks the catalog is well formed
func (c *Catalog) Validate() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("catalog has no sections")
	}

	seen := make(map[string]string)
	for _, s := range c.Sections {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("section without name")
		}
		names := make(map[string]bool)
		for _, m := range s.Metrics {
			if strings.TrimSpace(m.Name) == "" {
				return fmt.Errorf("section %s: metric without name", s.Name)
			}
			if other, dup := seen[m.Name]; dup {
				return fmt.Errorf("metric %q defined in both %s and %s", m.Name, other, s.Name)
			}
			seen[m.Name] = s.Name
			names[m.Name] = true

			if m.IsComposite() {
				if len(m.Phases) < 2 {
					return fmt.Errorf("metric %q: composite metrics need at least two phases", m.Name)
				}
				for _, p := range m.Phases {
					if p.Label == "" || p.Right == "" || p.Left == "" {
						return fmt.Errorf("metric %q: phase needs label, right and left columns", m.Name)
					}
					if p.LSIColumn != "" && p.LSIColumn == m.LSI {
						return fmt.Errorf("metric %q: phase %q reuses the base LSI column", m.Name, p.Label)
					}
				}
				continue
			}
			if m.Right == "" || m.Left == "" {
				return fmt.Errorf("metric %q: right and left columns are required", m.Name)
			}
		}
		for _, d := range s.Defaults {
			if !names[d] {
				return fmt.Errorf("section %s: default metric %q is not defined", s.Name, d)
			}
		}
	}

	labels := make(map[string]bool)
	for _, z := range c.ZScores {
		if z.Column == "" || z.Label == "" {
			return fmt.Errorf("z-score entry needs column and label")
		}
		if labels[z.Label] {
			return fmt.Errorf("duplicate z-score label %q", z.Label)
		}
		labels[z.Label] = true
	}
	return nil
}
