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

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"datacli/internal/config"
	"datacli/internal/dataprocessing"
	"datacli/internal/errors"
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

// run executes the CLI. A failure is logged as JSON on stderr before it is
// returned.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	logger, closer, _ := infrastructure.NewLogger(config.Default().Logging, stderr)
	defer func() {
		if err != nil {
			logger.Error("Analysis failed", slog.String("error", err.Error()))
		}
		_ = closer.Close()
	}()

	fs := flag.NewFlagSet("linestats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: linestats [-debug] <input>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errors.NewConfigError("invalid command line", err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.NewAppValidationError("exactly one input file is required")
	}

	cfg, err := config.Load("")
	if err != nil {
		return errors.NewConfigError("failed to load configuration", err)
	}
	if *debug {
		cfg.Logging.Level = "debug"
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
	defer func() { _ = shutdownTracing(context.Background()) }()

	opts := operations.OptionsFromConfig(cfg.Pipeline)
	opts.Mode = dataprocessing.ModeLines

	runner := operations.NewRunner(logger, opts, nil)
	runner.SetTracerProvider(tp)
	res, err := runner.Analyze(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	report, ok := res.Report.(*dataprocessing.LineReport)
	if !ok {
		return errors.NewInvalidStateError("line analysis produced no report")
	}
	return printReport(stdout, report)
}

// printReport writes the metrics as "Metric Name: value" lines
func printReport(w io.Writer, report *dataprocessing.LineReport) error {
	metrics := []struct {
		key   string
		value interface{}
	}{
		{"total_lines", report.TotalLines},
		{"empty_lines", report.EmptyLines},
		{"avg_length", report.AvgLength},
	}

	title := cases.Title(language.English)
	var b strings.Builder
	b.WriteString("Analysis Results:\n")
	for _, m := range metrics {
		name := title.String(strings.ReplaceAll(m.key, "_", " "))
		fmt.Fprintf(&b, "%s: %s\n", name, cast.ToString(m.value))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.NewIOError("failed to print results", err)
	}
	return nil
}
