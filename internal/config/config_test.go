package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacli/internal/dataprocessing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, "auto", cfg.Pipeline.Mode)
	assert.Equal(t, DefaultOutputDir, cfg.Pipeline.OutputDir)
	assert.Equal(t, "json", cfg.Pipeline.ReportFormat)
	assert.Equal(t, "strict", cfg.Pipeline.RowPolicy)
	assert.Equal(t, dataprocessing.DefaultNAValues, cfg.Pipeline.NAValues)
	assert.True(t, cfg.Pipeline.WriteProcessedData)
	assert.False(t, cfg.Pipeline.ExcelReport)
	assert.Equal(t, 1, cfg.Pipeline.Workers)

	assert.Equal(t, 30*time.Second, cfg.Runtime.Timeout)
	assert.Equal(t, 3, cfg.Runtime.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Runtime.RetryDelay)

	require.NoError(t, cfg.Validate())
}

func TestDefault_NAValuesNotShared(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.NAValues[0] = "changed"

	assert.Equal(t, "", dataprocessing.DefaultNAValues[0])
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "yaml file overlays defaults",
			file: `
logging:
  level: debug
pipeline:
  mode: lines
  output_dir: /tmp/results
  report_format: yaml
  workers: 4
runtime:
  timeout: 45s
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "lines", cfg.Pipeline.Mode)
				assert.Equal(t, "/tmp/results", cfg.Pipeline.OutputDir)
				assert.Equal(t, "yaml", cfg.Pipeline.ReportFormat)
				assert.Equal(t, 4, cfg.Pipeline.Workers)
				assert.Equal(t, 45*time.Second, cfg.Runtime.Timeout)
				// untouched keys keep their defaults
				assert.Equal(t, "strict", cfg.Pipeline.RowPolicy)
				assert.True(t, cfg.Pipeline.WriteProcessedData)
			},
		},
		{
			name: "env overrides file",
			file: `
pipeline:
  mode: lines
  row_policy: pad
`,
			env: map[string]string{
				"DATACLI_PIPELINE_MODE":       "csv",
				"DATACLI_PIPELINE_NA_VALUES":  "NA,-",
				"DATACLI_RUNTIME_MAX_RETRIES": "7",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "csv", cfg.Pipeline.Mode)
				assert.Equal(t, "pad", cfg.Pipeline.RowPolicy)
				assert.Equal(t, []string{"NA", "-"}, cfg.Pipeline.NAValues)
				assert.Equal(t, 7, cfg.Runtime.MaxRetries)
			},
		},
		{
			name:    "invalid mode from env",
			env:     map[string]string{"DATACLI_PIPELINE_MODE": "parquet"},
			wantErr: true,
		},
		{
			name:    "invalid workers from file",
			file:    "pipeline:\n  workers: 0\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "pipeline: [unclosed",
			wantErr: true,
		},
		{
			name:    "multi-character delimiter",
			env:     map[string]string{"DATACLI_PIPELINE_DELIMITER": ";;"},
			wantErr: true,
		},
		{
			name: "tracing from env",
			env: map[string]string{
				"DATACLI_TRACING_EXPORTER":     "stdout",
				"DATACLI_TRACING_SAMPLE_RATIO": "0.5",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "stdout", cfg.Tracing.Exporter)
				assert.Equal(t, 0.5, cfg.Tracing.SampleRatio)
			},
		},
		{
			name:    "unknown trace exporter",
			file:    "tracing:\n  exporter: otlp\n",
			wantErr: true,
		},
		{
			name:    "unparseable duration",
			env:     map[string]string{"DATACLI_RUNTIME_RETRY_DELAY": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigFile, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	path := writeConfigFile(t, "pipeline:\n  excel_report: true\n")
	t.Setenv(EnvConfigFile, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Pipeline.ExcelReport)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate_FileOutputNeedsPath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	assert.Error(t, cfg.Validate())

	cfg.Logging.FilePath = "logs/x.log"
	assert.NoError(t, cfg.Validate())
}
