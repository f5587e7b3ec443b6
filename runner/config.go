package runner

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the engine's host configuration, read from a TOML file.
type Config struct {
	Program    string `toml:"program"`     // compiled program file to execute
	Watch      bool   `toml:"watch"`       // re-run when the program file changes
	FrameRate  int    `toml:"frame_rate"`  // animation passes per second
	StickyPath string `toml:"sticky_path"` // sticky database; empty disables persistence
	Verbosity  int    `toml:"verbosity"`   // log verbosity, 0 quiet
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		FrameRate: 30,
	}
}

// LoadConfig reads a TOML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if cfg.FrameRate <= 0 {
		return cfg, fmt.Errorf("config %q: frame_rate must be positive", path)
	}
	return cfg, nil
}
