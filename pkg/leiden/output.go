package leiden

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// NameFunc renders a node id for output; nil prints the numeric id.
type NameFunc func(id int64) string

// OutputWriter interface for flexible output generation
type OutputWriter interface {
	WriteMapping(w io.Writer, result *Result, names NameFunc) error
	WriteAssignments(w io.Writer, result *Result, names NameFunc) error
	WriteSummary(w io.Writer, result *Result) error
	WriteAll(result *Result, names NameFunc, outputDir string, prefix string) error
}

// FileWriter implements OutputWriter for file-based output
type FileWriter struct{}

// NewFileWriter creates a new file-based output writer
func NewFileWriter() OutputWriter {
	return &FileWriter{}
}

// WriteAll writes <prefix>.mapping, <prefix>.assignments and <prefix>.json
// into outputDir.
func (fw *FileWriter) WriteAll(result *Result, names NameFunc, outputDir string, prefix string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputs := []struct {
		ext   string
		write func(io.Writer) error
	}{
		{"mapping", func(w io.Writer) error { return fw.WriteMapping(w, result, names) }},
		{"assignments", func(w io.Writer) error { return fw.WriteAssignments(w, result, names) }},
		{"json", func(w io.Writer) error { return fw.WriteSummary(w, result) }},
	}
	for _, out := range outputs {
		path := filepath.Join(outputDir, fmt.Sprintf("%s.%s", prefix, out.ext))
		if err := writeFile(path, out.write); err != nil {
			return fmt.Errorf("failed to write %s: %w", out.ext, err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	if err := write(buf); err != nil {
		return err
	}
	return buf.Flush()
}

// WriteMapping writes each final community followed by its member count and
// members, one per line.
func (fw *FileWriter) WriteMapping(w io.Writer, result *Result, names NameFunc) error {
	for c, ids := range result.Groups() {
		if _, err := fmt.Fprintf(w, "c0_l%d_%d\n%d\n", result.NumLevels, c, len(ids)); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := fmt.Fprintln(w, nodeName(names, id)); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteAssignments writes "node community" lines grouped by community.
func (fw *FileWriter) WriteAssignments(w io.Writer, result *Result, names NameFunc) error {
	for c, ids := range result.Groups() {
		for _, id := range ids {
			if _, err := fmt.Fprintf(w, "%s %d\n", nodeName(names, id), c); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSummary writes the result as indented JSON.
func (fw *FileWriter) WriteSummary(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func nodeName(names NameFunc, id int64) string {
	if names != nil {
		return names(id)
	}
	return strconv.FormatInt(id, 10)
}
