package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Balancer BalancerConfig `yaml:"balancer"`
}

// ServerConfig holds HTTP observer endpoint settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	HTTPPort   int    `yaml:"http_port"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// NATSConfig holds event bus settings. When URL is empty an embedded broker
// is started on Port so the daemon is self-contained.
type NATSConfig struct {
	URL  string `yaml:"url"`
	Port int    `yaml:"port"`
}

// BalancerConfig holds the balancing policy knobs
type BalancerConfig struct {
	// Enabled is a pointer so an omitted key is distinguishable from an
	// explicit `enabled: false`; only the latter turns balancing off.
	Enabled         *bool         `yaml:"enabled"`
	MinStreak       int           `yaml:"min_streak"`
	MinPlayers      int           `yaml:"min_players"`
	ImmunityRounds  int           `yaml:"immunity_rounds"`
	MinRoundsToLog  int           `yaml:"min_rounds_to_log"`
	MinPopulation   int           `yaml:"min_population"`
	RatingWindow    time.Duration `yaml:"rating_window"`
	BombsitesPath   string        `yaml:"bombsites_path"`
	ExtraPlayerSide string        `yaml:"extra_player_side"` // "", "T" or "CT"; empty follows bombsite count
}

// IsEnabled reports whether balancing is on. Unset means on.
func (c *BalancerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in zero-valued fields
func (c *Config) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "/var/lib/osbase/osbase.db"
	}
	if c.NATS.Port == 0 {
		c.NATS.Port = 4222
	}
	if c.Balancer.Enabled == nil {
		enabled := true
		c.Balancer.Enabled = &enabled
	}
	if c.Balancer.MinStreak == 0 {
		c.Balancer.MinStreak = 3
	}
	if c.Balancer.MinPlayers == 0 {
		c.Balancer.MinPlayers = 4
	}
	if c.Balancer.ImmunityRounds == 0 {
		c.Balancer.ImmunityRounds = 2
	}
	if c.Balancer.MinRoundsToLog == 0 {
		c.Balancer.MinRoundsToLog = 3
	}
	if c.Balancer.MinPopulation == 0 {
		c.Balancer.MinPopulation = 10
	}
	if c.Balancer.RatingWindow == 0 {
		c.Balancer.RatingWindow = 90 * 24 * time.Hour
	}
	if c.Balancer.BombsitesPath == "" {
		c.Balancer.BombsitesPath = "/var/lib/osbase/bombsites.cfg"
	}
}

// Default returns a configuration with all defaults applied, used when no
// config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
