package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		ID   string `yaml:"id"`
		Path string `yaml:"path"`
		TTL  string `yaml:"ttl"`
	} `yaml:"catalog"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB"`
		MaxBackups int    `yaml:"maxBackups"`
		MaxAgeDays int    `yaml:"maxAgeDays"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields the zero config so the
// service runs in-memory with the embedded catalog.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
