// Package interp wires the lexer, parser, evaluator, and adaptive
// executor into one top-level Interpreter, and implements the module
// loader described in spec.md §6.
package interp

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the interpreter's own YAML-loadable configuration,
// covering the knobs spec.md §4.7/§4.8/§4.12 leave to the host:
// debug/stack-trace toggles, color mode, log file, and the hot-spot
// tracker's promotion thresholds. New applies StackTraceEnabled,
// LogFile and AdaptiveExecution, and copies Debug into the error
// system's DebugMode, which nothing else reads. Color, WarmThreshold
// and HotThreshold are loaded and saved but not applied: the console
// reporter colors its output only when writing to a terminal, and the
// hot-spot tracker uses its own fixed thresholds (10 and 100).
type Config struct {
	Debug             bool   `yaml:"debug"`
	StackTraceEnabled bool   `yaml:"stack_trace_enabled"`
	Color             bool   `yaml:"color"`
	LogFile           string `yaml:"log_file"`
	AdaptiveExecution bool   `yaml:"adaptive_execution"`
	WarmThreshold     int    `yaml:"warm_threshold"`
	HotThreshold      int    `yaml:"hot_threshold"`
}

// DefaultConfig matches the defaults named in spec.md §4.8.
func DefaultConfig() Config {
	return Config{
		StackTraceEnabled: true,
		Color:             true,
		AdaptiveExecution: true,
		WarmThreshold:     10,
		HotThreshold:      100,
	}
}

// LoadConfig reads a YAML config file, falling back to DefaultConfig
// for any field the file omits.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg back to path as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
