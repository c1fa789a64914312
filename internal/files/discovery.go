package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery resolves command line inputs into the list of files to process
type Discovery struct {
	basePath   string
	extensions map[string]bool
}

// NewDiscovery creates a discovery rooted at basePath. Relative inputs are
// resolved against it; an empty basePath means the working directory.
// extensions lists the lowercase suffixes (".csv") picked up from directories.
func NewDiscovery(basePath string, extensions []string) *Discovery {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Discovery{basePath: basePath, extensions: exts}
}

// ExpandInputs turns files and directories into a flat, de-duplicated list of
// file paths. Directories contribute their supported files, sorted by name.
// Paths that do not exist are passed through so the loader reports them.
func (d *Discovery) ExpandInputs(inputs []string) ([]string, error) {
	seen := make(map[string]bool, len(inputs))
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, input := range inputs {
		path := d.resolve(input)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			add(path)
			continue
		}

		found, err := d.FindDataFiles(path)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f.Path)
		}
	}

	return out, nil
}

// FindDataFiles lists the supported files directly inside dir, sorted by name.
// Hidden files and office lock files ("~$") are skipped.
func (d *Discovery) FindDataFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !d.extensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (d *Discovery) resolve(path string) string {
	if d.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// OutputName derives a directory name from an input file name: "a.csv"
// becomes "a_csv".
func OutputName(path string) string {
	name := filepath.Base(path)
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" || name == "_" || name == string(filepath.Separator) {
		return "input"
	}
	return name
}

// OutputDirs assigns every input its own directory under base. Names that
// collide get a numeric suffix in input order ("a_csv", "a_csv_2").
func OutputDirs(baseDir string, inputs []string) []string {
	taken := make(map[string]bool, len(inputs))
	dirs := make([]string, len(inputs))
	for i, input := range inputs {
		base := OutputName(input)
		name := base
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[name] = true
		dirs[i] = filepath.Join(baseDir, name)
	}
	return dirs
}
