// Package dataprocessing implements the load -> analyze -> write pipeline
// for flat data files.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Loader: reads a delimited (CSV/TSV), xlsx or plain-text file into a Dataset
// 2. Analyzer: computes descriptive statistics, as a pure function of the Dataset
// 3. Writer: persists the statistics and a copy of the table into a directory
//
// # Usage
//
//	loader := dataprocessing.NewLoader(dataprocessing.DefaultLoaderOptions())
//	table, err := loader.LoadTable("input.csv")
//	if err != nil {
//	    return err
//	}
//	report := dataprocessing.AnalyzeTable(table)
//	writer := dataprocessing.NewWriter(dataprocessing.DefaultWriterOptions())
//	files, err := writer.WriteTable("output", report, table)
//
// # Data Model
//
// Tabular cells are tagged values (Null, String, Integer, Float) that keep
// their original text, so processed_data.csv reproduces the input cells
// exactly. Text datasets hold trimmed non-empty lines and a count of the
// blank lines that were dropped.
//
// # Error Handling
//
// Every failure is an *errors.AppError: NOT_FOUND for a missing input,
// PARSING for malformed content, IO for write failures and INVALID_STATE
// when asked to analyze or write without a dataset. Nothing in this package
// logs or retries; callers decide.
package dataprocessing
