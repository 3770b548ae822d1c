package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	skerrors "github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/scheduler"
	"github.com/kbukum/streamkit/streams"
)

// BaseConfig contains the identity fields shared by every deployment.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "streamkit"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	for _, v := range validEnvs {
		if c.Environment == v {
			return nil
		}
	}
	return skerrors.InvalidConfig("base",
		fmt.Errorf("environment must be one of %v (got: %s)", validEnvs, c.Environment))
}

// StreamConfig tunes stream operator behavior.
type StreamConfig struct {
	// MergePrefetch is the per-source in-flight window used by Merge.
	MergePrefetch int `yaml:"merge_prefetch" mapstructure:"merge_prefetch" validate:"min=0"`
	// DefaultBufferSize is the window size used when Buffer is asked for
	// a non-positive size.
	DefaultBufferSize int `yaml:"default_buffer_size" mapstructure:"default_buffer_size" validate:"min=0"`
}

// ApplyDefaults applies default values to stream configuration.
func (c *StreamConfig) ApplyDefaults() {
	if c.MergePrefetch == 0 {
		c.MergePrefetch = 1
	}
	if c.DefaultBufferSize == 0 {
		c.DefaultBufferSize = 16
	}
}

// TelemetryConfig controls OTLP export of stream metrics and traces.
// Disabled by default; the service identity comes from the base section.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// ApplyDefaults applies default values to telemetry configuration. A zero
// sample rate defaults to full sampling; disable the section to turn
// tracing off.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Observability combines this section with the application identity into
// the observability package's config.
func (c *TelemetryConfig) Observability(base BaseConfig) observability.Config {
	return observability.Config{
		ServiceName:    base.Name,
		ServiceVersion: base.Version,
		Environment:    base.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		MetricInterval: c.MetricInterval,
		SampleRate:     c.SampleRate,
	}
}

// Config is the root configuration for a streamkit application.
type Config struct {
	Base      BaseConfig           `yaml:"base" mapstructure:"base"`
	Logging   logger.Config        `yaml:"logging" mapstructure:"logging"`
	Scheduler scheduler.PoolConfig `yaml:"scheduler" mapstructure:"scheduler"`
	Streams   StreamConfig         `yaml:"streams" mapstructure:"streams"`
	Telemetry TelemetryConfig      `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills in defaults for every section.
func (c *Config) ApplyDefaults() {
	c.Base.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	c.Streams.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

var validate = validator.New()

// Validate checks the full configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return skerrors.InvalidConfig("logging", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(&c.Streams); err != nil {
		return skerrors.InvalidConfig("streams", err)
	}
	if err := validate.Struct(&c.Telemetry); err != nil {
		return skerrors.InvalidConfig("telemetry", err)
	}
	return nil
}

// Apply pushes the configuration into the packages it governs: the global
// logger and the stream tunables. Scheduler config is consumed by callers
// constructing pools.
func (c *Config) Apply() {
	logger.Init(c.Logging)
	logger.RegisterDefaults()
	streams.Configure(streams.Tunables{
		MergePrefetch:     c.Streams.MergePrefetch,
		DefaultBufferSize: c.Streams.DefaultBufferSize,
	})
}
