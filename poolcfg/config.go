// File: poolcfg/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package poolcfg

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/momentics/poolkit/pool"
)

// Config mirrors pool.Settings as a YAML document. LogFile, when non-empty,
// names a file Settings opens on the caller's behalf (analogous to
// pool.NewWithLogFile); leave it empty to use pool.Settings.LogSink as-is
// (nil, in which case the caller wires one up after Load returns).
type Config struct {
	BlocksPerPage uint   `yaml:"blocks_per_page"`
	PadBytes      uint   `yaml:"pad_bytes"`
	Alignment     uint   `yaml:"alignment"`
	Debug         bool   `yaml:"debug"`
	Exceptions    bool   `yaml:"exceptions"`
	LogFile       string `yaml:"log_file"`
}

// Load reads and parses the YAML document at path.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the Config corresponding to pool.DefaultSettings().
func Default() Config {
	d := pool.DefaultSettings()
	return Config{
		BlocksPerPage: d.BlocksPerPage,
		PadBytes:      d.PadBytes,
		Alignment:     d.Alignment,
		Debug:         d.Debug,
		Exceptions:    d.Exceptions,
	}
}

// Settings translates Config into pool.Settings. When LogFile is non-empty
// it is opened (truncate-create) and OwnsSink is set so the allocator's
// Teardown closes it.
func (c Config) Settings() (pool.Settings, error) {
	s := pool.Settings{
		BlocksPerPage: c.BlocksPerPage,
		PadBytes:      c.PadBytes,
		Alignment:     c.Alignment,
		Debug:         c.Debug,
		Exceptions:    c.Exceptions,
	}
	if c.LogFile != "" {
		f, err := os.Create(c.LogFile)
		if err != nil {
			return pool.Settings{}, err
		}
		s.LogSink = f
		s.OwnsSink = true
	}
	return s, nil
}
