package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"datacli/internal/dataprocessing"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
	Runtime  RuntimeConfig  `yaml:"runtime" envconfig:"RUNTIME"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PipelineConfig controls the load -> analyze -> write pipeline
type PipelineConfig struct {
	// Mode selects the loader: auto picks by file extension.
	Mode         string   `yaml:"mode" envconfig:"MODE" validate:"oneof=auto csv tsv xlsx lines"`
	OutputDir    string   `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	ReportFormat string   `yaml:"report_format" envconfig:"REPORT_FORMAT" validate:"oneof=json yaml"`
	RowPolicy    string   `yaml:"row_policy" envconfig:"ROW_POLICY" validate:"oneof=strict pad"`
	Delimiter    string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"omitempty,len=1"`
	Sheet        string   `yaml:"sheet" envconfig:"SHEET"`
	NAValues     []string `yaml:"na_values" envconfig:"NA_VALUES"`

	WriteProcessedData bool   `yaml:"write_processed_data" envconfig:"WRITE_PROCESSED_DATA"`
	ExcelReport        bool   `yaml:"excel_report" envconfig:"EXCEL_REPORT"`
	Workers            int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	MetricsFile        string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// TracingConfig controls OpenTelemetry spans for pipeline runs
type TracingConfig struct {
	// Exporter is "none" (spans are dropped) or "stdout" (JSON spans on stderr).
	Exporter    string  `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=none stdout"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
}

// RuntimeConfig holds options for external collaborators. The pipeline
// itself performs no network calls and never reads these.
type RuntimeConfig struct {
	APIURL     string        `yaml:"api_url" envconfig:"API_URL" validate:"omitempty,url"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"min=0"`
	MaxRetries int           `yaml:"max_retries" envconfig:"MAX_RETRIES" validate:"min=0"`
	RetryDelay time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" validate:"min=0"`
}

// Load builds the configuration from defaults, an optional YAML file and
// DATACLI_* environment variables, in increasing order of precedence.
// An empty configFile falls back to DATACLI_CONFIG_FILE and then to the
// well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	explicit := configFile != ""
	if !explicit {
		configFile = os.Getenv(EnvConfigFile)
		explicit = configFile != ""
	}
	if !explicit {
		configFile = getConfigFilePath()
	}

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Unset variables leave the field untouched since no default tags are declared.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file at filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		DefaultConfigFile,
		"configs/" + DefaultConfigFile,
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/datacli.log",
		},
		Pipeline: PipelineConfig{
			Mode:               "auto",
			OutputDir:          DefaultOutputDir,
			ReportFormat:       "json",
			RowPolicy:          "strict",
			NAValues:           append([]string(nil), dataprocessing.DefaultNAValues...),
			WriteProcessedData: true,
			Workers:            1,
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			SampleRatio: 1.0,
		},
		Runtime: RuntimeConfig{
			APIURL:     "https://api.example.com",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelay: 5 * time.Second,
		},
	}
}
