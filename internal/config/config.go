package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"washpoint/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Booking    BookingConfig    `yaml:"booking"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// TelegramConfig points admin notifications at a chat. Optional: when
// disabled, notifications only go to the log.
type TelegramConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type BookingConfig struct {
	MaxAdvanceDays    int     `yaml:"max_advance_days"`
	RateLimitEnabled  bool    `yaml:"rate_limit_enabled"`
	RateLimitAttempts int     `yaml:"rate_limit_attempts"`
	RateLimitWindow   int     `yaml:"rate_limit_window"`
	RateLimitRPS      float64 `yaml:"rate_limit_rps"`
}

// TrackerConfig drives the public tracking demo. TickInterval is how much
// wall time one minute of model time takes; the original site used one second.
type TrackerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	AdvanceDelay time.Duration `yaml:"advance_delay"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

type ExportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env опционален, локальная разработка
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
			return errors.New("telegram bot token is required when telegram notifications are enabled")
		}
		if c.Telegram.AdminChatID == 0 {
			return errors.New("telegram admin chat id is required when telegram notifications are enabled")
		}
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when redis is enabled")
	}

	if c.Exports.Enabled && c.Exports.Path == "" {
		return errors.New("exports path is required when exports are enabled")
	}

	if c.Booking.MaxAdvanceDays <= 0 {
		return errors.New("booking max_advance_days must be positive")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "washpoint"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = models.MaxAdvanceDays
	}
	if c.Booking.RateLimitAttempts == 0 {
		c.Booking.RateLimitAttempts = models.RateLimitAttempts
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = models.RateLimitWindow
	}

	if c.Tracker.TickInterval == 0 {
		c.Tracker.TickInterval = time.Second
	}
	if c.Tracker.AdvanceDelay == 0 {
		c.Tracker.AdvanceDelay = 500 * time.Millisecond
	}
	if c.Tracker.SessionTTL == 0 {
		c.Tracker.SessionTTL = models.DefaultSessionTTL * time.Second
	}

	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "24h"
	}
}
