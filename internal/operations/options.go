package operations

import (
	"unicode/utf8"

	"datacli/internal/config"
	"datacli/internal/dataprocessing"
)

// Options configures a Runner
type Options struct {
	Mode    dataprocessing.Mode
	Loader  dataprocessing.LoaderOptions
	Writer  dataprocessing.WriterOptions
	Workers int
}

// DefaultOptions returns a sequential runner with default loader and writer
func DefaultOptions() Options {
	return Options{
		Mode:    dataprocessing.ModeAuto,
		Loader:  dataprocessing.DefaultLoaderOptions(),
		Writer:  dataprocessing.DefaultWriterOptions(),
		Workers: 1,
	}
}

// OptionsFromConfig maps the validated pipeline configuration to runner options
func OptionsFromConfig(cfg config.PipelineConfig) Options {
	opts := DefaultOptions()

	if cfg.Mode != "" {
		opts.Mode = dataprocessing.Mode(cfg.Mode)
	}
	if cfg.RowPolicy != "" {
		opts.Loader.RowPolicy = dataprocessing.RowPolicy(cfg.RowPolicy)
	}
	if cfg.Delimiter != "" {
		opts.Loader.Delimiter, _ = utf8.DecodeRuneInString(cfg.Delimiter)
	}
	if cfg.NAValues != nil {
		opts.Loader.NAValues = append([]string(nil), cfg.NAValues...)
	}
	opts.Loader.Sheet = cfg.Sheet

	if cfg.ReportFormat != "" {
		opts.Writer.Format = dataprocessing.ReportFormat(cfg.ReportFormat)
	}
	opts.Writer.WriteProcessedData = cfg.WriteProcessedData
	opts.Writer.ExcelReport = cfg.ExcelReport

	if cfg.Workers > 0 {
		opts.Workers = cfg.Workers
	}
	return opts
}
