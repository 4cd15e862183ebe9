// Package config loads application configuration from a YAML file with
// SALESVISION_-prefixed environment overrides.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Store   StoreConfig   `koanf:"store"`
	Upload  UploadConfig  `koanf:"upload"`
	Session SessionConfig `koanf:"session"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type UploadConfig struct {
	Dir          string `koanf:"dir"`
	ResultDir    string `koanf:"result_dir"`
	MaxSizeBytes int64  `koanf:"max_size_bytes"`
}

type SessionConfig struct {
	TTLSeconds int `koanf:"ttl"` // cookie max-age and in-memory lifetime
}

// Load reads configuration from path (optional) and the environment.
// Environment keys map SALESVISION_SERVER_ADDR → server.addr.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("server.addr", ":8080")
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("store.path", "salesvision.db")
	k.Set("upload.dir", "uploads")
	k.Set("upload.result_dir", "results")
	k.Set("upload.max_size_bytes", int64(32<<20))
	k.Set("session.ttl", 86400)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("SALESVISION_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SALESVISION_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
