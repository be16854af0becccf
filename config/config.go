package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Reminder   ReminderConfig   `yaml:"reminder"`
	Branches   []BranchConfig   `yaml:"branches"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// ReminderConfig controls the scheduled duty reminder scan.
type ReminderConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CronSpec string `yaml:"cron_spec"`
	Timezone string `yaml:"timezone"`
}

// BranchConfig describes one branch of the roster. Branches are seeded
// into the database at startup; the config file is their source of truth.
type BranchConfig struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	MaxDuties    int    `yaml:"max_duties"`
	Secondary    string `yaml:"secondary"`      // paired branch previewed read-only for today
	DayStartHour int    `yaml:"day_start_hour"` // first bookable hour, inclusive
	DayEndHour   int    `yaml:"day_end_hour"`   // last bookable hour, exclusive
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Reminder.CronSpec == "" {
		cfg.Reminder.CronSpec = "45 * * * *" // scan at :45 for the next hour's duties
	}
	if cfg.Reminder.Timezone == "" {
		cfg.Reminder.Timezone = "Europe/Moscow"
	}

	if len(cfg.Branches) == 0 {
		return nil, fmt.Errorf("at least one branch must be configured")
	}
	for i := range cfg.Branches {
		b := &cfg.Branches[i]
		if b.Code == "" {
			return nil, fmt.Errorf("branch %d: code is required", i)
		}
		if b.MaxDuties <= 0 {
			b.MaxDuties = 2
		}
		if b.DayEndHour <= b.DayStartHour {
			b.DayStartHour = 0
			b.DayEndHour = 24
		}
	}

	return &cfg, nil
}

// Branch returns the configuration of one branch by code.
func (c *Config) Branch(code string) (BranchConfig, bool) {
	for _, b := range c.Branches {
		if b.Code == code {
			return b, true
		}
	}
	return BranchConfig{}, false
}
