package config

import (
	_ "embed"
	"os"

	"evalboard/domain/evaluation"
	"evalboard/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed metrics.yaml
var defaultCatalog []byte

// DefaultMetricCatalog returns the embedded catalog
func DefaultMetricCatalog() (*evaluation.Catalog, error) {
	return ParseMetricCatalog(defaultCatalog)
}

// LoadMetricCatalog reads the catalog from path, or the embedded default
// when path is empty.
func LoadMetricCatalog(path string) (*evaluation.Catalog, error) {
	if path == "" {
		return DefaultMetricCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to read metric catalog %s", path))
	}
	return ParseMetricCatalog(data)
}

// ParseMetricCatalog decodes and validates a YAML catalog
func ParseMetricCatalog(data []byte) (*evaluation.Catalog, error) {
	var catalog evaluation.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to parse metric catalog"))
	}
	if err := catalog.Validate(); err != nil {
		return nil, errors.ConfigInvalid("invalid metric catalog: " + err.Error())
	}
	return &catalog, nil
}
