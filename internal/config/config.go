// Package config provides YAML-based configuration loading for demonjump.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config contains all settings for the shell, the store and the SSH server.
type Config struct {
	Database    string            `yaml:"database"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Bridge      BridgeConfig      `yaml:"bridge"`
	Engine      EngineConfig      `yaml:"engine"`
	SSH         SSHConfig         `yaml:"ssh"`
	Log         LogConfig         `yaml:"log"`
}

// LeaderboardConfig defines how much of the ranking is shown.
type LeaderboardConfig struct {
	TopN int `yaml:"top_n"`
}

// BridgeConfig sizes the queue between the engine and the UI loop.
type BridgeConfig struct {
	Buffer int `yaml:"buffer"`
}

// Engine kinds.
const (
	EngineDemo   = "demo"
	EngineRemote = "remote"
)

// EngineConfig selects and tunes the engine behind the shell.
type EngineConfig struct {
	Kind     string `yaml:"kind"`
	URL      string `yaml:"url"` // Websocket URL of a remote engine
	TickRate int    `yaml:"tick_rate"`
	MinTicks int    `yaml:"min_ticks"`
	MaxTicks int    `yaml:"max_ticks"`
	MaxStep  int    `yaml:"max_step"`
}

// SSHConfig defines the SSH server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("config: database path is required")
	}
	if c.Leaderboard.TopN <= 0 {
		return fmt.Errorf("config: leaderboard.top_n must be positive, got %d", c.Leaderboard.TopN)
	}
	if c.Bridge.Buffer <= 0 {
		return fmt.Errorf("config: bridge.buffer must be positive, got %d", c.Bridge.Buffer)
	}

	switch c.Engine.Kind {
	case EngineDemo:
		if c.Engine.TickRate <= 0 {
			return fmt.Errorf("config: engine.tick_rate must be positive, got %d", c.Engine.TickRate)
		}
		if c.Engine.MinTicks > c.Engine.MaxTicks {
			return fmt.Errorf("config: engine.min_ticks (%d) exceeds engine.max_ticks (%d)",
				c.Engine.MinTicks, c.Engine.MaxTicks)
		}
	case EngineRemote:
		if c.Engine.URL == "" {
			return errors.New("config: engine.url is required for a remote engine")
		}
	default:
		return fmt.Errorf("config: unknown engine.kind %q", c.Engine.Kind)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}

	return nil
}
