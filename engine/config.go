package engine

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultConfig []byte

type Config struct {
	Context     string         `yaml:"context"`
	LocalPlayer string         `yaml:"local_player"`
	TickRate    int            `yaml:"tick_rate"`
	Gravity     float64        `yaml:"gravity"`
	Humanoid    HumanoidConfig `yaml:"humanoid"`
	Swim        SwimConfig     `yaml:"swim"`
	Log         LogConfig      `yaml:"log"`
}

type HumanoidConfig struct {
	WalkSpeed float64 `yaml:"walk_speed"`
	SwimSpeed float64 `yaml:"swim_speed"`
	JumpPower float64 `yaml:"jump_power"`
}

type SwimConfig struct {
	VelocityResetDelay time.Duration `yaml:"velocity_reset_delay"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

// DefaultConfig returns the embedded configuration.
func DefaultConfig() *Config {
	cfg, err := ParseConfig(defaultConfig)
	if err != nil {
		panic("engine: embedded config: " + err.Error())
	}
	return cfg
}

// LoadConfig reads a yaml config from disk. An empty path yields the
// embedded defaults. Fields left out of the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: load config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("engine: load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes yaml over the built-in defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := builtinConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := ParseExecutionContext(c.Context); err != nil {
		return err
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("config: tick_rate must be positive, got %d", c.TickRate)
	}
	if c.Gravity < 0 {
		return fmt.Errorf("config: gravity must not be negative, got %g", c.Gravity)
	}
	if c.Swim.VelocityResetDelay < 0 {
		return fmt.Errorf("config: swim.velocity_reset_delay must not be negative, got %s", c.Swim.VelocityResetDelay)
	}
	return nil
}

// DT returns the fixed tick length in seconds.
func (c *Config) DT() float64 {
	return 1.0 / float64(c.TickRate)
}

func builtinConfig() *Config {
	return &Config{
		Context:     "client",
		LocalPlayer: "Player1",
		TickRate:    60,
		Gravity:     196.2,
		Humanoid: HumanoidConfig{
			WalkSpeed: 160,
			SwimSpeed: 90,
			JumpPower: 240,
		},
		Swim: SwimConfig{VelocityResetDelay: 50 * time.Millisecond},
	}
}
