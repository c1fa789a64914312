package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"datacli/internal/config"
	"datacli/internal/dataprocessing"
	"datacli/internal/errors"
	"datacli/internal/files"
	"datacli/internal/infrastructure"
	"datacli/internal/operations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// cliFlags holds the raw command line values
type cliFlags struct {
	configFile  string
	outputDir   string
	mode        string
	format      string
	rowPolicy   string
	noProcessed bool
	xlsx        bool
	workers     int
	metricsFile string
	trace       bool
	debug       bool
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: processor [flags] <input>...\n\nInputs may be files or directories.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&f.configFile, "config", "", "path to a YAML configuration file")
	fs.StringVar(&f.outputDir, "output-dir", config.DefaultOutputDir, "directory for statistics and processed data")
	fs.StringVar(&f.mode, "mode", string(dataprocessing.ModeAuto), "input mode: auto, csv, tsv, xlsx or lines")
	fs.StringVar(&f.format, "format", string(dataprocessing.FormatJSON), "statistics format: json or yaml")
	fs.StringVar(&f.rowPolicy, "row-policy", string(dataprocessing.RowPolicyStrict), "ragged rows: strict or pad")
	fs.BoolVar(&f.noProcessed, "no-processed", false, "do not write processed_data.csv")
	fs.BoolVar(&f.xlsx, "xlsx", false, "also write statistics.xlsx")
	fs.IntVar(&f.workers, "workers", 1, "number of inputs processed concurrently")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	fs.BoolVar(&f.trace, "trace", false, "write OpenTelemetry spans as JSON to stderr")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	return fs, f
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(fs *flag.FlagSet, f *cliFlags, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "output-dir":
			cfg.Pipeline.OutputDir = f.outputDir
		case "mode":
			cfg.Pipeline.Mode = strings.ToLower(f.mode)
		case "format":
			cfg.Pipeline.ReportFormat = strings.ToLower(f.format)
		case "row-policy":
			cfg.Pipeline.RowPolicy = strings.ToLower(f.rowPolicy)
		case "no-processed":
			cfg.Pipeline.WriteProcessedData = !f.noProcessed
		case "xlsx":
			cfg.Pipeline.ExcelReport = f.xlsx
		case "workers":
			cfg.Pipeline.Workers = f.workers
		case "metrics-file":
			cfg.Pipeline.MetricsFile = f.metricsFile
		case "trace":
			if f.trace {
				cfg.Tracing.Exporter = "stdout"
			}
		case "debug":
			if f.debug {
				cfg.Logging.Level = "debug"
			}
		}
	})
}

// run executes the CLI. A failure is logged as JSON on stderr before it is
// returned.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	// console logging with defaults until the configuration is known
	logger, closer, _ := infrastructure.NewLogger(config.Default().Logging, stderr)
	defer func() {
		if err != nil {
			logger.Error("Processing failed", slog.String("error", err.Error()))
		}
		_ = closer.Close()
	}()

	fs, f := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errors.NewConfigError("invalid command line", err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.NewAppValidationError("at least one input file is required")
	}

	cfg, err := config.Load(f.configFile)
	if err != nil {
		return errors.NewConfigError("failed to load configuration", err)
	}
	applyFlags(fs, f, cfg)
	if err := cfg.Validate(); err != nil {
		return errors.NewConfigError("invalid configuration", err)
	}

	cfgLogger, cfgCloser, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return errors.NewConfigError("failed to initialize logger", err)
	}
	logger, closer = cfgLogger, cfgCloser

	tp, shutdownTracing, err := infrastructure.NewTracerProvider(cfg.Tracing, stderr)
	if err != nil {
		return errors.NewConfigError("failed to initialize tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Failed to flush spans", slog.String("error", err.Error()))
		}
	}()

	mode := dataprocessing.Mode(cfg.Pipeline.Mode)
	discovery := files.NewDiscovery("", dataprocessing.SupportedExtensions(mode))
	inputs, err := discovery.ExpandInputs(fs.Args())
	if err != nil {
		return errors.NewIOError("failed to expand inputs", err)
	}

	logger.Info("Starting data processing",
		slog.String("version", config.AppVersion),
		slog.Int("inputs", len(inputs)),
		slog.String("output_dir", cfg.Pipeline.OutputDir),
		slog.String("mode", cfg.Pipeline.Mode),
		slog.Int("workers", cfg.Pipeline.Workers))

	var metrics *infrastructure.PipelineMetrics
	if cfg.Pipeline.MetricsFile != "" {
		metrics = infrastructure.NewPipelineMetrics()
	}

	runner := operations.NewRunner(logger, operations.OptionsFromConfig(cfg.Pipeline), metrics)
	runner.SetTracerProvider(tp)
	results, runErr := runner.RunAll(ctx, inputs, cfg.Pipeline.OutputDir)

	for _, res := range results {
		if res == nil || res.Status != operations.StatusCompleted {
			continue
		}
		fmt.Fprintf(stdout, "%s: results saved to %s\n", res.Input, res.OutputDir)
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.Pipeline.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file",
				slog.String("path", cfg.Pipeline.MetricsFile),
				slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("Processing complete", slog.Int("inputs", len(inputs)))
	return nil
}
