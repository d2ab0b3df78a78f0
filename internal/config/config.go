// Package config provides the configuration schema and loader for the
// Murattil recitation feedback server.
package config

import "github.com/quranlabs/murattil/internal/tracker"

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
}

// ServerConfig configures the HTTP/WebSocket listener and logging.
type ServerConfig struct {
	// ListenAddr is the address the server binds to. Default: ":8095".
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is the minimum level emitted. Default: info.
	LogLevel LogLevel `yaml:"log_level"`

	// LogJSON switches the slog handler to JSON output.
	LogJSON bool `yaml:"log_json"`
}

// EngineConfig configures alignment defaults applied to new sessions that
// do not set their own values.
type EngineConfig struct {
	// DefaultMode is the latency mode for sessions that request none.
	// Default: balanced.
	DefaultMode tracker.LatencyMode `yaml:"default_mode"`

	// AcceptThreshold, when non-zero, overrides every mode's acceptance
	// threshold server-wide. Must be in (0, 1].
	AcceptThreshold float64 `yaml:"accept_threshold"`

	// ClassCost is the same-phonetic-class substitution cost used by the
	// similarity scorer. Zero means the built-in default.
	ClassCost float64 `yaml:"class_cost"`

	// Tajweed overrides the per-mode tajweed default when set.
	Tajweed *bool `yaml:"tajweed"`
}

// applyDefaults fills unset fields with their documented defaults.
func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8095"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Engine.DefaultMode == "" {
		c.Engine.DefaultMode = tracker.ModeBalanced
	}
}
