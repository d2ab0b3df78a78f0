package config_test

import (
	"strings"
	"testing"

	"github.com/quranlabs/murattil/internal/config"
	"github.com/quranlabs/murattil/internal/tracker"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()

	yaml := `
server:
  listen_addr: ":9000"
  log_level: debug
  log_json: true
engine:
  default_mode: accurate
  accept_threshold: 0.8
  class_cost: 0.25
  tajweed: false
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q, want :9000", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Engine.DefaultMode != tracker.ModeAccurate {
		t.Errorf("DefaultMode = %q, want accurate", cfg.Engine.DefaultMode)
	}
	if cfg.Engine.Tajweed == nil || *cfg.Engine.Tajweed {
		t.Errorf("Tajweed = %v, want explicit false", cfg.Engine.Tajweed)
	}
}

func TestLoadFromReader_DefaultsApplied(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Server.ListenAddr != ":8095" {
		t.Errorf("ListenAddr = %q, want default :8095", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("LogLevel = %q, want default info", cfg.Server.LogLevel)
	}
	if cfg.Engine.DefaultMode != tracker.ModeBalanced {
		t.Errorf("DefaultMode = %q, want default balanced", cfg.Engine.DefaultMode)
	}
	if cfg.Engine.Tajweed != nil {
		t.Errorf("Tajweed = %v, want nil (follow mode default)", cfg.Engine.Tajweed)
	}
}

func TestLoadFromReader_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("server:\n  port: 8080\n"))
	if err == nil {
		t.Error("unknown field accepted, want decode error")
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	t.Parallel()

	yaml := `
server:
  log_level: loud
engine:
  default_mode: turbo
  accept_threshold: 2
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("invalid config accepted, want error")
	}
	for _, want := range []string{"log_level", "default_mode", "accept_threshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
