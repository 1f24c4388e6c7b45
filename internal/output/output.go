package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridscrape/internal/formatter"
	"gridscrape/internal/logger"
	"gridscrape/internal/table"
)

var extensions = map[string]string{
	"csv":      ".csv",
	"xlsx":     ".xlsx",
	"markdown": ".md",
	"json":     ".json",
}

// Extension returns the file extension for a format, including the dot.
func Extension(format string) string {
	return extensions[format]
}

// InferFormat infers output format from file extension
func InferFormat(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// Write renders t in every format and writes <dir>/<base><ext> for each one.
// All renderings are produced before anything touches the disk, and files
// written by this call are removed again if a later write fails, so a failed
// run leaves no partial export behind. It returns the absolute paths written.
func Write(dir, base string, t *table.Table, formats []string, opts formatter.Options) ([]string, error) {
	if base == "" {
		return nil, fmt.Errorf("output name is required")
	}

	type rendered struct {
		path string
		data []byte
	}
	files := make([]rendered, 0, len(formats))
	for _, format := range formats {
		ext := Extension(format)
		if ext == "" {
			return nil, fmt.Errorf("unsupported output format: %s", format)
		}
		data, err := formatter.Format(t, format, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to format %s: %w", format, err)
		}
		path, err := filepath.Abs(filepath.Join(dir, base+ext))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output path: %w", err)
		}
		files = append(files, rendered{path: path, data: data})
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := writeFile(f.path, f.data); err != nil {
			for _, p := range written {
				_ = os.Remove(p)
			}
			return nil, fmt.Errorf("failed to write to file: %w", err)
		}
		logger.Debug("wrote %d bytes to %s", len(f.data), f.path)
		written = append(written, f.path)
	}
	return written, nil
}

// writeFile writes data next to path and renames it into place.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
