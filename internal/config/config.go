package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "MEDIA_CONTACTS_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	discoveryKeyEnv    = "DISCOVERY_API_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	logLevelEnv        = "LOG_LEVEL"
	defaultRunInterval = 24 * time.Hour
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Discovery     DiscoveryConfig    `yaml:"discovery"`
	Notifications NotificationConfig `yaml:"notifications"`
	Heuristics    HeuristicsConfig   `yaml:"heuristics"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines how often import runs execute.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timezone string        `yaml:"timezone"`
	location *time.Location
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.UTC
}

// DiscoveryConfig wires the opaque contact-discovery collaborator.
type DiscoveryConfig struct {
	Endpoint string         `yaml:"endpoint"`
	APIKey   string         `yaml:"apiKey"`
	Query    DiscoveryQuery `yaml:"query"`
}

// DiscoveryQuery describes the default search executed each run.
type DiscoveryQuery struct {
	Topic    string `yaml:"topic"`
	Country  string `yaml:"country"`
	Language string `yaml:"language"`
	Limit    int    `yaml:"limit"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// HeuristicsConfig tunes the analysis pipeline. Classification tables live
// here so taxonomy updates don't require a rebuild; empty tables fall back to
// the compiled defaults.
type HeuristicsConfig struct {
	FingerprintCapacity      int                 `yaml:"fingerprintCapacity"`
	MinContactScore          float64             `yaml:"minContactScore"`
	SyndicationSkipThreshold float64             `yaml:"syndicationSkipThreshold"`
	EmailRules               []EmailRuleConfig   `yaml:"emailRules"`
	BeatSections             map[string]string   `yaml:"beatSections"`
	BeatKeywords             map[string][]string `yaml:"beatKeywords"`
}

// EmailRuleConfig is one externally loadable email classification pattern.
type EmailRuleConfig struct {
	Pattern    string  `yaml:"pattern"`
	Type       string  `yaml:"type"`
	Alias      string  `yaml:"alias"`
	Priority   string  `yaml:"priority"`
	Confidence float64 `yaml:"confidence"`
	Reason     string  `yaml:"reason"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(discoveryKeyEnv); v != "" {
		c.Discovery.APIKey = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		c.Scheduler.location = time.UTC
		return
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Discovery.Endpoint != "" {
		base.Discovery.Endpoint = override.Discovery.Endpoint
	}
	if override.Discovery.APIKey != "" {
		base.Discovery.APIKey = override.Discovery.APIKey
	}
	if override.Discovery.Query.Topic != "" {
		base.Discovery.Query = override.Discovery.Query
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Heuristics.FingerprintCapacity > 0 {
		base.Heuristics.FingerprintCapacity = override.Heuristics.FingerprintCapacity
	}
	if override.Heuristics.MinContactScore > 0 {
		base.Heuristics.MinContactScore = override.Heuristics.MinContactScore
	}
	if override.Heuristics.SyndicationSkipThreshold > 0 {
		base.Heuristics.SyndicationSkipThreshold = override.Heuristics.SyndicationSkipThreshold
	}
	if len(override.Heuristics.EmailRules) > 0 {
		base.Heuristics.EmailRules = override.Heuristics.EmailRules
	}
	if len(override.Heuristics.BeatSections) > 0 {
		base.Heuristics.BeatSections = override.Heuristics.BeatSections
	}
	if len(override.Heuristics.BeatKeywords) > 0 {
		base.Heuristics.BeatKeywords = override.Heuristics.BeatKeywords
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{Interval: defaultRunInterval, location: time.UTC},
		Discovery: DiscoveryConfig{
			Endpoint: "https://discovery.example.org/api",
			Query:    DiscoveryQuery{Topic: "technology", Language: "en", Limit: 50},
		},
		Heuristics: HeuristicsConfig{
			FingerprintCapacity:      10000,
			MinContactScore:          0.4,
			SyndicationSkipThreshold: 0.7,
		},
	}
}
