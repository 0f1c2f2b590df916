package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"nucleval/internal/alignment"
	"nucleval/internal/averaging"
	apperrors "nucleval/internal/errors"
)

// EnvPrefix is the prefix of every environment variable
const EnvPrefix = "NUCLEVAL"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Evaluation EvaluationConfig `yaml:"evaluation" envconfig:"EVALUATION"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// EvaluationConfig contains the parameters of the evaluation core
type EvaluationConfig struct {
	ErrorLimit             int     `yaml:"error_limit" envconfig:"ERROR_LIMIT" validate:"min=1,max=99"`
	SmallErrorThreshold    float64 `yaml:"small_error_threshold" envconfig:"SMALL_ERROR_THRESHOLD" validate:"min=0"`
	Tolerance              float64 `yaml:"tolerance" envconfig:"TOLERANCE" validate:"min=0"`
	MinFraction            float64 `yaml:"min_fraction" envconfig:"MIN_FRACTION" validate:"min=0,max=1"`
	StallGroups            int     `yaml:"stall_groups" envconfig:"STALL_GROUPS" validate:"min=0"`
	MaxAlignmentIterations int     `yaml:"max_alignment_iterations" envconfig:"MAX_ALIGNMENT_ITERATIONS" validate:"min=1"`
	MaxGroupStates         int     `yaml:"max_group_states" envconfig:"MAX_GROUP_STATES" validate:"min=1"`
	Method                 string  `yaml:"method" envconfig:"METHOD" validate:"required"`
	ConfidenceLevel        float64 `yaml:"confidence_level" envconfig:"CONFIDENCE_LEVEL" validate:"gt=0,lt=1"`
	OutlierConfidence      float64 `yaml:"outlier_confidence" envconfig:"OUTLIER_CONFIDENCE" validate:"gt=0,lt=1"`
	MaxRelativeWeight      float64 `yaml:"max_relative_weight" envconfig:"MAX_RELATIVE_WEIGHT" validate:"gt=0,lte=1"`
	BootstrapSamples       int     `yaml:"bootstrap_samples" envconfig:"BOOTSTRAP_SAMPLES" validate:"min=1"`
	BootstrapSeed          uint64  `yaml:"bootstrap_seed" envconfig:"BOOTSTRAP_SEED"`
	MaxIterations          int     `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"min=1"`
	IterationTolerance     float64 `yaml:"iteration_tolerance" envconfig:"ITERATION_TOLERANCE" validate:"gt=0"`
	HuberK                 float64 `yaml:"huber_k" envconfig:"HUBER_K" validate:"gt=0"`
	Concurrency            int     `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=256"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	ServiceVersion string  `yaml:"service_version" envconfig:"SERVICE_VERSION"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxBodyBytes:    4 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/nucleval.log",
		},
		Evaluation: DefaultEvaluation(),
		Telemetry: TelemetryConfig{
			ServiceName:    "nucleval",
			ServiceVersion: "1.0.0",
			Environment:    "development",
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}

// DefaultEvaluation returns the standard evaluation parameters
func DefaultEvaluation() EvaluationConfig {
	avg := averaging.DefaultOptions()
	align := alignment.DefaultOptions()
	return EvaluationConfig{
		ErrorLimit:             avg.ErrorLimit,
		SmallErrorThreshold:    avg.SmallError,
		Tolerance:              align.Tolerance,
		MinFraction:            align.MinFraction,
		StallGroups:            align.StallGroups,
		MaxAlignmentIterations: align.MaxIterations,
		MaxGroupStates:         align.MaxGroupStates,
		Method:                 averaging.Auto.String(),
		ConfidenceLevel:        avg.ConfidenceLevel,
		OutlierConfidence:      avg.OutlierConfidence,
		MaxRelativeWeight:      avg.MaxRelativeWeight,
		BootstrapSamples:       avg.BootstrapSamples,
		BootstrapSeed:          avg.BootstrapSeed,
		MaxIterations:          avg.MaxIterations,
		IterationTolerance:     avg.IterationTolerance,
		HuberK:                 avg.HuberK,
		Concurrency:            4,
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// the file named by NUCLEVAL_CONFIG, or config.yaml in a common location)
// and environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	// unset variables leave file and default values untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file on cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"nucleval.yaml",
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

var validate = validator.New()

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}
	if _, err := averaging.ParseMethod(c.Evaluation.Method); err != nil {
		return apperrors.NewConfigError("invalid evaluation method", err)
	}
	return nil
}

// AveragingMethod returns the configured averaging method
func (e EvaluationConfig) AveragingMethod() (averaging.Method, error) {
	return averaging.ParseMethod(e.Method)
}

// AlignOptions converts the configuration to alignment options
func (e EvaluationConfig) AlignOptions() alignment.Options {
	return alignment.Options{
		Tolerance:      e.Tolerance,
		MinFraction:    e.MinFraction,
		StallGroups:    e.StallGroups,
		MaxIterations:  e.MaxAlignmentIterations,
		MaxGroupStates: e.MaxGroupStates,
	}
}

// AveragingOptions converts the configuration to averaging options
func (e EvaluationConfig) AveragingOptions() averaging.Options {
	return averaging.Options{
		ErrorLimit:         e.ErrorLimit,
		SmallError:         e.SmallErrorThreshold,
		ConfidenceLevel:    e.ConfidenceLevel,
		OutlierConfidence:  e.OutlierConfidence,
		MaxRelativeWeight:  e.MaxRelativeWeight,
		BootstrapSamples:   e.BootstrapSamples,
		BootstrapSeed:      e.BootstrapSeed,
		MaxIterations:      e.MaxIterations,
		IterationTolerance: e.IterationTolerance,
		HuberK:             e.HuberK,
	}
}
