package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetgrid/evsched/core/metrics"
)

// Config is the static, file-backed configuration for the optimization
// core. Site- and constraint-level parameters (the MAF parameter bag) are
// decoded separately at run time by core/params, since their key set is
// open-ended and only knowable per site.
type Config struct {
	Fixture FixtureConfig  `json:"fixture"`
	Metrics metrics.Config `json:"metrics"`
	Logging LoggingConfig  `json:"logging"`
}

// FixtureConfig points at the YAML scenario fixture that stands in for the
// database/TMS sources this repo does not implement.
type FixtureConfig struct {
	Path string `json:"path"`
}

// Load reads a Config from path (YAML or JSON), then applies
// EVSCHED_-prefixed environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("EVSCHED_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "evsched_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if cfg.Fixture.Path == "" {
		return nil, fmt.Errorf("fixture.path is required")
	}
	return &cfg, nil
}
