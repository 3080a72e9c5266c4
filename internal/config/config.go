// Package config загружает конфигурацию myx из YAML файла (myx.yaml)
// с переопределением через переменные окружения.
//
// Все ключи опциональны; отсутствующий файл по умолчанию — пустая конфигурация.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Myx/internal/domain"
)

// DefaultPath — файл конфигурации в текущей директории.
const DefaultPath = "myx.yaml"

// Переменные окружения.
const (
	EnvEventLog    = "MYX_EVENT_LOG"
	EnvDBURL       = "DB_URL"
	EnvRabbitMQURL = "RABBITMQ_URL"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvPushgateway = "PUSHGATEWAY_URL"
)

// ErrInvalidConfig — конфигурация не прошла валидацию.
var ErrInvalidConfig = errors.New("invalid config")

// LogConfig — настройки slog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PostgresConfig — зеркало журнала в Postgres. Пустой DSN — выключено.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// RabbitMQConfig — публикация событий в RabbitMQ. Пустой URL — выключено.
type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// MetricsConfig — Prometheus.
type MetricsConfig struct {
	// Pushgateway — куда отправлять метрики после CLI запусков.
	Pushgateway string `yaml:"pushgateway"`
	Job         string `yaml:"job"`

	// Listen — адрес /metrics для schedule и watch.
	Listen string `yaml:"listen"`
}

// WatchConfig — настройки myx watch.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Config — конфигурация myx.
type Config struct {
	DatasetsDir   string `yaml:"datasets_dir"`
	FlowsDir      string `yaml:"flows_dir"`
	TreatmentsDir string `yaml:"treatments_dir"`
	EventLog      string `yaml:"event_log"`
	TempDir       string `yaml:"temp_dir"`

	Log       LogConfig         `yaml:"log"`
	Postgres  PostgresConfig    `yaml:"postgres"`
	RabbitMQ  RabbitMQConfig    `yaml:"rabbitmq"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	Schedules []domain.Schedule `yaml:"schedules"`
	Watch     WatchConfig       `yaml:"watch"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		DatasetsDir:   "datasets",
		FlowsDir:      "flows",
		TreatmentsDir: "treatments",
		EventLog:      "myx.log",
		Log:           LogConfig{Level: "INFO", Format: "json"},
		RabbitMQ:      RabbitMQConfig{Exchange: "myx.events"},
		Metrics:       MetricsConfig{Job: "myx", Listen: ":9464"},
		Watch:         WatchConfig{Debounce: 2 * time.Second},
	}
}

// Load читает конфигурацию.
//
// Пустой path — DefaultPath, его отсутствие не ошибка.
// Явно указанный, но отсутствующий файл — ошибка.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv переопределяет значения из переменных окружения.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.EventLog, EnvEventLog)
	set(&c.Postgres.DSN, EnvDBURL)
	set(&c.RabbitMQ.URL, EnvRabbitMQURL)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Log.Format, EnvLogFormat)
	set(&c.Metrics.Pushgateway, EnvPushgateway)
}

// applyDefaults заполняет значения, обнулённые в файле.
func (c *Config) applyDefaults() {
	def := Default()
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	fill(&c.DatasetsDir, def.DatasetsDir)
	fill(&c.FlowsDir, def.FlowsDir)
	fill(&c.TreatmentsDir, def.TreatmentsDir)
	fill(&c.EventLog, def.EventLog)
	fill(&c.Log.Level, def.Log.Level)
	fill(&c.Log.Format, def.Log.Format)
	fill(&c.RabbitMQ.Exchange, def.RabbitMQ.Exchange)
	fill(&c.Metrics.Job, def.Metrics.Job)
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = def.Watch.Debounce
	}
	for i := range c.Schedules {
		if c.Schedules[i].Timezone == "" {
			c.Schedules[i].Timezone = "UTC"
		}
		if c.Schedules[i].Name == "" {
			c.Schedules[i].Name = c.Schedules[i].Flow
		}
	}
}

// Validate проверяет конфигурацию.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: log.format must be json or text, got %q", ErrInvalidConfig, c.Log.Format)
	}

	for i, s := range c.Schedules {
		if s.Flow == "" {
			return fmt.Errorf("%w: schedules[%d]: flow is required", ErrInvalidConfig, i)
		}
		if strings.TrimSpace(s.CronExpr) == "" {
			return fmt.Errorf("%w: schedules[%d] (%s): cron is required", ErrInvalidConfig, i, s.Name)
		}
		if _, err := domain.ParseOutputMode(s.OutputMode); err != nil {
			return fmt.Errorf("%w: schedules[%d] (%s): %w", ErrInvalidConfig, i, s.Name, err)
		}
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("%w: schedules[%d] (%s): timezone: %w", ErrInvalidConfig, i, s.Name, err)
		}
	}
	return nil
}
