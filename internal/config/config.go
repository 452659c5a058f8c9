package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Generator GeneratorConfig   `yaml:"generator"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	UI        UIConfig          `yaml:"ui"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	Logging   LoggingConfig     `yaml:"logging"`
	Referrals map[string]string `yaml:"referrals"` // имя площадки -> реферальная ссылка
}

// GeneratorConfig настройки генератора возможностей
type GeneratorConfig struct {
	BatchSize int `yaml:"batch_size"`
	// Seed 0 означает сид от текущего времени
	Seed uint64 `yaml:"seed"`
}

// SchedulerConfig настройки обновления данных
type SchedulerConfig struct {
	IntervalSeconds     int `yaml:"interval_seconds"`
	ManualRefreshMillis int `yaml:"manual_refresh_ms"`
}

// UIConfig настройки пользовательского интерфейса
type UIConfig struct {
	RefreshRate     int     `yaml:"refresh_rate_ms"`
	ShowCharts      bool    `yaml:"show_charts"`
	JitterAmplitude float64 `yaml:"jitter_amplitude"`
	LogLines        int     `yaml:"log_lines"`
}

// MetricsConfig настройки Prometheus. Пустой адрес отключает сервер
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig настройки логирования
type LoggingConfig struct {
	Level    string `yaml:"level"`
	File     string `yaml:"file"`
	JSONFile string `yaml:"json_file"`
}

// Default возвращает конфигурацию по умолчанию.
// Load разбирает файл поверх нее, поэтому явный 0 в файле сохраняется.
func Default() *Config {
	c := &Config{
		Scheduler: SchedulerConfig{ManualRefreshMillis: 1000},
		UI:        UIConfig{ShowCharts: true, JitterAmplitude: 0.0001},
	}
	c.applyDefaults()
	return c
}

// Load загружает конфигурацию из файла. Отсутствующий файл дает конфигурацию по умолчанию
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
		}
	}
	c.applyDefaults()
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Generator.BatchSize == 0 {
		c.Generator.BatchSize = 12
	}
	if c.Scheduler.IntervalSeconds == 0 {
		c.Scheduler.IntervalSeconds = 10
	}
	if c.UI.RefreshRate == 0 {
		c.UI.RefreshRate = 250
	}
	if c.UI.LogLines == 0 {
		c.UI.LogLines = 6
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.File == "" {
		c.Logging.File = "app.log"
	}
	if c.Logging.JSONFile == "" {
		c.Logging.JSONFile = "app.json.log"
	}
}

// Переменные окружения, переопределяющие файл. .env подхватывается в main
const (
	EnvLogLevel    = "FUNDARB_LOG_LEVEL"
	EnvMetricsAddr = "FUNDARB_METRICS_ADDR"
	EnvSeed        = "FUNDARB_SEED"
)

// ApplyEnv переопределяет значения из окружения
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvMetricsAddr); ok {
		c.Metrics.Addr = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("некорректный %s: %w", EnvSeed, err)
		}
		c.Generator.Seed = seed
	}
	return nil
}

// Validate проверяет значения после подстановки умолчаний
func (c *Config) Validate() error {
	if c.Generator.BatchSize < 0 {
		return fmt.Errorf("generator.batch_size не может быть отрицательным: %d", c.Generator.BatchSize)
	}
	if c.Scheduler.IntervalSeconds < 0 {
		return fmt.Errorf("scheduler.interval_seconds не может быть отрицательным: %d", c.Scheduler.IntervalSeconds)
	}
	if c.Scheduler.ManualRefreshMillis < 0 {
		return fmt.Errorf("scheduler.manual_refresh_ms не может быть отрицательным: %d", c.Scheduler.ManualRefreshMillis)
	}
	if c.UI.JitterAmplitude < 0 {
		return fmt.Errorf("ui.jitter_amplitude не может быть отрицательным: %v", c.UI.JitterAmplitude)
	}
	return nil
}

// RefreshInterval период автоматического обновления
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalSeconds) * time.Second
}

// ManualRefreshDelay задержка ручного обновления
func (c *Config) ManualRefreshDelay() time.Duration {
	return time.Duration(c.Scheduler.ManualRefreshMillis) * time.Millisecond
}

// UIRefreshRate период перерисовки интерфейса
func (c *Config) UIRefreshRate() time.Duration {
	return time.Duration(c.UI.RefreshRate) * time.Millisecond
}
