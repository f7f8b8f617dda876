package formula

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/formula/detect"
	"github.com/tsawler/formula/render"
	"github.com/tsawler/formula/tile"
)

// Config collects the tunable knobs of the whole pipeline in one YAML-
// loadable structure. CLI flags override file values.
type Config struct {
	DPI      int           `yaml:"dpi"`
	MinScore float64       `yaml:"min_score"`
	Detect   detect.Config `yaml:"detect"`
	Tile     tile.Config   `yaml:"tile"`
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		DPI:      render.DefaultDPI,
		MinScore: 0.6,
		Detect:   detect.DefaultConfig(),
		Tile:     tile.DefaultConfig(),
	}
}

// LoadConfig reads a YAML config file over the defaults, so a file only
// needs to name the values it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
