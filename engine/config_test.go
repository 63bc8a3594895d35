package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Context != "client" || cfg.LocalPlayer != "Player1" {
		t.Fatalf("unexpected identity %q %q", cfg.Context, cfg.LocalPlayer)
	}
	if cfg.TickRate != 60 || cfg.Gravity != 196.2 {
		t.Fatalf("unexpected timing tick_rate=%d gravity=%g", cfg.TickRate, cfg.Gravity)
	}
	if cfg.Swim.VelocityResetDelay != 50*time.Millisecond {
		t.Fatalf("velocity reset delay = %s, want 50ms", cfg.Swim.VelocityResetDelay)
	}
	if got := cfg.DT(); got != 1.0/60.0 {
		t.Fatalf("DT() = %v", got)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "partial_keeps_defaults",
			yaml: "gravity: 50\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Gravity != 50 || cfg.TickRate != 60 || cfg.Humanoid.SwimSpeed != 90 {
					t.Fatalf("unexpected config %+v", cfg)
				}
			},
		},
		{
			name: "durations_and_nested",
			yaml: "swim:\n  velocity_reset_delay: 200ms\nhumanoid:\n  swim_speed: 120\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Swim.VelocityResetDelay != 200*time.Millisecond || cfg.Humanoid.SwimSpeed != 120 {
					t.Fatalf("unexpected config %+v", cfg)
				}
			},
		},
		{
			name: "server_context",
			yaml: "context: server\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Context != "server" {
					t.Fatalf("context = %q", cfg.Context)
				}
			},
		},
		{name: "unknown_context", yaml: "context: editor\n", wantErr: "unknown context"},
		{name: "zero_tick_rate", yaml: "tick_rate: 0\n", wantErr: "tick_rate"},
		{name: "negative_gravity", yaml: "gravity: -1\n", wantErr: "gravity"},
		{name: "negative_delay", yaml: "swim:\n  velocity_reset_delay: -1s\n", wantErr: "velocity_reset_delay"},
		{name: "malformed", yaml: "gravity: [\n", wantErr: "unmarshal config"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.yaml))
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConfig: %v", err)
			}
			tc.check(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil || cfg.Gravity != 196.2 {
		t.Fatalf("LoadConfig(\"\") = %+v, %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "swim.yaml")
	if err := os.WriteFile(path, []byte("gravity: 9.8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil || cfg.Gravity != 9.8 {
		t.Fatalf("LoadConfig(%s) = %+v, %v", path, cfg, err)
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := LoadConfig(missing); err == nil || !strings.Contains(err.Error(), missing) {
		t.Fatalf("expected an error naming %s, got %v", missing, err)
	}
}

func TestParseExecutionContext(t *testing.T) {
	tests := []struct {
		in      string
		want    ExecutionContext
		wantErr bool
	}{
		{"", ContextClient, false},
		{"client", ContextClient, false},
		{"server", ContextServer, false},
		{"Client", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseExecutionContext(tc.in)
		if (err != nil) != tc.wantErr || (!tc.wantErr && got != tc.want) {
			t.Errorf("ParseExecutionContext(%q) = %v, %v", tc.in, got, err)
		}
	}
	if ContextServer.String() != "server" || ExecutionContext(7).String() != "ExecutionContext(7)" {
		t.Errorf("unexpected String() output")
	}
}
