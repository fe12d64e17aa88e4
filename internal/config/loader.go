package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadTetris returns the game configuration. An explicit path must load
// cleanly. Without one, the first usable file of ~/.tetris/configs/tetris.yaml
// and ./configs/tetris.yaml wins, then the embedded defaults.
//
// Every file is decoded over the defaults, so it only needs the keys it
// changes.
func LoadTetris(customPath string) (TetrisConfig, error) {
	if customPath != "" {
		return loadFile(customPath, DefaultTetrisConfig())
	}

	for _, path := range searchPaths() {
		if cfg, err := loadFile(path, DefaultTetrisConfig()); err == nil {
			return cfg, nil
		}
	}

	cfg := DefaultTetrisConfig()
	if err := yaml.Unmarshal(defaultTetrisYAML, &cfg); err != nil {
		return DefaultTetrisConfig(), nil
	}
	return cfg, nil
}

// searchPaths lists the implicit config locations, most specific first.
func searchPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".tetris", "configs", "tetris.yaml"))
	}
	return append(paths, filepath.Join("configs", "tetris.yaml"))
}

// loadFile decodes path over a copy of base and validates the result.
func loadFile(path string, base TetrisConfig) (TetrisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := base
	cfg.Modes = maps.Clone(base.Modes)
	if cfg.Modes == nil {
		cfg.Modes = map[string]ModeOverride{}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}
