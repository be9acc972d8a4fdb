package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a YAML configuration document from path and
// unmarshals it into cfg, following the yaml.Unmarshal usage pattern
// from the teacher's internal/k8s package.
func LoadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
