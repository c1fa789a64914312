// Package operations runs the data pipeline for one or more input files.
//
// A run executes three stages in order:
//
//   - load: read the input into a Dataset
//   - analyze: compute the statistics report
//   - write: persist the report (and the processed table) to the output directory
//
// Each run carries a trace ID in its context, logs stage_start,
// stage_complete and stage_error events, and records stage durations in the
// optional PipelineMetrics. With a tracer provider set, a run is one
// "datacli.run" span with a child span per stage. The context is checked
// between stages, so a cancelled run stops before the next stage begins.
//
// Example usage:
//
//	runner := operations.NewRunner(logger, operations.OptionsFromConfig(cfg.Pipeline), metrics)
//	runner.SetTracerProvider(tp)
//	results, err := runner.RunAll(ctx, []string{"a.csv", "b.txt"}, "output")
//
// RunAll bounds concurrency with Options.Workers. With more than one input
// each file writes into its own sub-directory named after the file
// ("a_csv", "b_txt").
package operations
