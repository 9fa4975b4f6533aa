package config

import "time"

// DefaultConfig returns the configuration used when no config file is found.
// Dev login is enabled here only because this path is a bare development run;
// an explicit config file must opt in.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 5003,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Store: StoreConfig{
			Driver: "memory",
			LogCap: 7,
		},
		Auth: AuthConfig{
			JWTSecret: "change-me-in-production",
			TokenTTL:  24 * time.Hour,
			DevLogin: DevLoginConfig{
				Enabled:  true,
				Email:    "admin@example.com",
				Password: "password123",
			},
		},
		Web: WebConfig{
			StaticDir: "./web",
		},
		Broadcast: BroadcastConfig{
			Interval:  10 * time.Second,
			Heartbeat: 30 * time.Second,
		},
	}
}
