package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all process settings, populated from environment variables.
// Each koanf key is the lower-cased name of its environment variable.
type Config struct {
	DataDir         string `koanf:"data_dir" validate:"required"`
	SiteConfigPath  string `koanf:"site_config_path" validate:"required"`
	CalibrationPath string `koanf:"calibration_path" validate:"required"`

	HTTPAddr        string        `koanf:"http_addr" validate:"required"`
	LogLevel        string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat       string        `koanf:"log_format" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	KafkaBrokers       []string      `koanf:"kafka_brokers" validate:"required,min=1,dive,required"`
	KafkaSourceTopic   string        `koanf:"kafka_source_topic" validate:"required"`
	KafkaSinkTopic     string        `koanf:"kafka_sink_topic" validate:"required"`
	KafkaGroupID       string        `koanf:"kafka_group_id" validate:"required"`
	BatchSize          int           `koanf:"batch_size" validate:"min=1,max=1000"`
	BatchFlushInterval time.Duration `koanf:"batch_flush_interval" validate:"gt=0"`

	// Processing parameters.
	SmoothingWindow     int     `koanf:"smoothing_window" validate:"min=1,max=1000"`
	MPPTIrradianceRatio float64 `koanf:"mppt_irradiance_ratio" validate:"gt=0"`
	MPPTPowerRatio      float64 `koanf:"mppt_power_ratio" validate:"gt=0"`
	DayStartTime        string  `koanf:"day_start_time" validate:"required"`
	DayEndTime          string  `koanf:"day_end_time" validate:"required"`
}

func defaultConfig() *Config {
	return &Config{
		DataDir:         "./data",
		SiteConfigPath:  "./config/config.json",
		CalibrationPath: "./config/calibration.json",

		HTTPAddr:        ":8080",
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: 10 * time.Second,

		KafkaBrokers:       []string{"localhost:9092"},
		KafkaSourceTopic:   "pv-day-ready",
		KafkaSinkTopic:     "pv-day-summaries",
		KafkaGroupID:       "pv-monitoring-etl",
		BatchSize:          10,
		BatchFlushInterval: 500 * time.Millisecond,

		SmoothingWindow:     domain.DefaultSmoothingWindow,
		MPPTIrradianceRatio: domain.DefaultDipIrradianceRatio,
		MPPTPowerRatio:      domain.DefaultDipPowerRatio,
		DayStartTime:        domain.DefaultDayStart,
		DayEndTime:          domain.DefaultDayEnd,
	}
}

var (
	durationKeys = []string{"shutdown_timeout", "batch_flush_interval"}
	sliceKeys    = []string{"kafka_brokers"}
)

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	known := make(map[string]bool)
	for _, key := range k.Keys() {
		known[key] = true
	}
	if err := k.Load(env.Provider("", ".", func(key string) string {
		key = strings.ToLower(key)
		if !known[key] {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := parseDurations(k); err != nil {
		return nil, err
	}
	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := validateStruct(cfg, envName); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.TimeWindow(); err != nil {
		return nil, fmt.Errorf("invalid DAY_START_TIME/DAY_END_TIME: %w", err)
	}

	return cfg, nil
}

// Params returns the processing parameters carried by the configuration.
func (c *Config) Params() domain.Params {
	p := domain.DefaultParams()
	p.SmoothingWindow = c.SmoothingWindow
	p.Dip = domain.DipThresholds{
		IrradianceRatio: c.MPPTIrradianceRatio,
		PowerRatio:      c.MPPTPowerRatio,
	}
	return p
}

// TimeWindow returns the configured daylight window.
func (c *Config) TimeWindow() (domain.TimeWindow, error) {
	return domain.NewTimeWindow(c.DayStartTime, c.DayEndTime)
}

// parseDurations replaces duration strings from the environment with parsed
// values so a bad value is reported under its variable name.
func parseDurations(k *koanf.Koanf) error {
	for _, key := range durationKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
		}
		if err := k.Set(key, d); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

// splitSlices converts comma-separated environment values to slices.
func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(key, out); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
