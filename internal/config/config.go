package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "REVPULSE"

// Source discovery modes
const (
	ModeStatic = "static"
	ModeScan   = "scan"
)

// DefaultPlaceholder marks a static source block that was never filled in.
const DefaultPlaceholder = "PASTE CSV CONTENT HERE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Sources   SourcesConfig   `yaml:"sources" envconfig:"SOURCES"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string          `yaml:"host" envconfig:"HOST"`
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig limits dataset reloads triggered over HTTP
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SourcesConfig describes where transaction exports come from
type SourcesConfig struct {
	Mode            string               `yaml:"mode" envconfig:"MODE" validate:"oneof=static scan"`
	ScanDir         string               `yaml:"scan_dir" envconfig:"SCAN_DIR"`
	Extensions      []string             `yaml:"extensions" envconfig:"EXTENSIONS" validate:"min=1,dive,required"`
	LocationAliases map[string]string    `yaml:"location_aliases" envconfig:"LOCATION_ALIASES"`
	// PeriodTokens maps file name tokens to period labels. Empty means jun,
	// jul and aug.
	PeriodTokens    map[string]string    `yaml:"period_tokens" envconfig:"PERIOD_TOKENS"`
	Placeholder     string               `yaml:"placeholder" envconfig:"PLACEHOLDER"`
	Static          []StaticSourceConfig `yaml:"static" ignored:"true" validate:"dive"`
}

// StaticSourceConfig is one explicitly supplied export. Text holds the CSV
// inline; File points at it instead.
type StaticSourceConfig struct {
	Location string `yaml:"location" validate:"required"`
	Period   string `yaml:"period" validate:"required"`
	Text     string `yaml:"text"`
	File     string `yaml:"file"`
}

// ExportConfig controls the filtered transaction export
type ExportConfig struct {
	Dir       string `yaml:"dir" envconfig:"DIR"`
	FileName  string `yaml:"file_name" envconfig:"FILE_NAME" validate:"required"`
	BOMPrefix bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" validate:"min=1"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" validate:"min=1"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE" validate:"min=1"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" validate:"gt=0"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" validate:"gtfield=PingPeriod"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first. An empty filePath searches
// the usual locations.
func Load(filePath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	if filePath == "" {
		filePath = getConfigFilePath()
	}
	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so only variables that are actually set
	// override the file.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and the rules that span fields
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	switch c.Sources.Mode {
	case ModeScan:
		if strings.TrimSpace(c.Sources.ScanDir) == "" {
			return fmt.Errorf("sources.scan_dir is required in %s mode", ModeScan)
		}
	case ModeStatic:
		if len(c.Sources.Static) == 0 {
			return fmt.Errorf("sources.static must list at least one source in %s mode", ModeStatic)
		}
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required when logging.output is %q", c.Logging.Output)
	}

	return nil
}

// newValidator reports field names by their YAML keys
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"revpulse.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// ExportPath returns where the filtered transaction export is written
func (c *Config) ExportPath() string {
	if c.Export.Dir == "" {
		return c.Export.FileName
	}
	return strings.TrimRight(c.Export.Dir, "/") + "/" + c.Export.FileName
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  30 * time.Second,
			AllowedOrigins:  []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     1,
				Burst:   3,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/revpulse.log",
		},
		Sources: SourcesConfig{
			Mode:       ModeScan,
			ScanDir:    "data",
			Extensions: []string{".csv", ".xlsx"},
			LocationAliases: map[string]string{
				"berko":       "Berkhamsted",
				"berkhamsted": "Berkhamsted",
				"ayles":       "Aylesbury",
				"aylesbury":   "Aylesbury",
			},
			Placeholder: DefaultPlaceholder,
		},
		Export: ExportConfig{
			FileName: "filtered_transactions.csv",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "revpulse",
			Environment:    "development",
			EnableTracing:  false,
			TraceExporter:  "stdout",
			EnableMetrics:  true,
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			MaxMessageSize:  64 * 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}
