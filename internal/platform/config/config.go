package config

import (
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Web       WebConfig       `yaml:"web"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// StoreConfig selects the collection store driver at startup. Business code
// never inspects the driver name; it only sees the store interface.
type StoreConfig struct {
	Driver string            `yaml:"driver"`
	LogCap int               `yaml:"log_cap"`
	Redis  RedisStoreConfig  `yaml:"redis,omitempty"`
	SQLite SQLiteStoreConfig `yaml:"sqlite,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type SQLiteStoreConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

type AuthConfig struct {
	JWTSecret string         `yaml:"jwt_secret"`
	TokenTTL  time.Duration  `yaml:"token_ttl"`
	DevLogin  DevLoginConfig `yaml:"dev_login"`
}

// DevLoginConfig gates the fixed bootstrap credential pair. It bypasses the
// stored-user check entirely, so it must stay off outside development.
type DevLoginConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

type BroadcastConfig struct {
	Interval  time.Duration `yaml:"interval"`
	Heartbeat time.Duration `yaml:"heartbeat"`
}
