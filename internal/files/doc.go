// Package files resolves the inputs of a pipeline run.
//
// Discovery expands directory arguments into the data files they contain,
// filtered by extension, and leaves plain file paths untouched. OutputDirs
// gives each input of a multi-file run its own output directory.
//
// Example usage:
//
//	discovery := files.NewDiscovery("", []string{".csv", ".txt"})
//	inputs, err := discovery.ExpandInputs([]string{"data/", "notes.txt"})
//	dirs := files.OutputDirs("output", inputs)
package files
