package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/demonjump.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: "~/.demonjump/game.db",
		Leaderboard: LeaderboardConfig{
			TopN: 20,
		},
		Bridge: BridgeConfig{
			Buffer: 64,
		},
		Engine: EngineConfig{
			Kind:     EngineDemo,
			URL:      "ws://127.0.0.1:7777/engine",
			TickRate: 10,
			MinTicks: 30,
			MaxTicks: 120,
			MaxStep:  25,
		},
		SSH: SSHConfig{
			Address:     ":23234",
			HostKey:     "~/.demonjump/ssh_host_ed25519",
			IdleTimeout: 30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
