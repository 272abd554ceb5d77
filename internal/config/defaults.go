package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/client.yaml
var defaultClientYAML []byte

// Default returns the hard-coded client configuration.
func Default() ClientConfig {
	return ClientConfig{
		Relay: RelayConfig{
			URL:               "wss://localhost:8080",
			InviteBaseURL:     "http://localhost:3333",
			ProtocolVersion:   1,
			ConnectTimeout:    5 * time.Second,
			HeartbeatInterval: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Path: "~/.connect4/connect4.db",
		},
		SSH: SSHConfig{
			Address:     "0.0.0.0:2222",
			HostKey:     ".ssh/connect4_ed25519",
			IdleTimeout: 30 * time.Minute,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultClientYAML
}
