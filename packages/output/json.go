package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

// Report is the document written by the JSON and YAML formatters.
type Report struct {
	Summary  Summary    `json:"summary" yaml:"summary"`
	Files    []FileJSON `json:"files" yaml:"files"`
	Errors   []string   `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duration float64    `json:"duration" yaml:"duration"`
	Time     string     `json:"time" yaml:"time"`
}

type Summary struct {
	Files   int `json:"files" yaml:"files"`
	Total   int `json:"total" yaml:"total"`
	Valid   int `json:"valid" yaml:"valid"`
	Invalid int `json:"invalid" yaml:"invalid"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

type FileJSON struct {
	Path    string      `json:"path" yaml:"path"`
	Format  string      `json:"format" yaml:"format"`
	Entries []EntryJSON `json:"entries" yaml:"entries"`
}

// collector accumulates files for report style formatters.
type collector struct {
	files  []FileJSON
	errors []string
}

func (c *collector) add(result *requirements.FileResult) {
	file := FileJSON{
		Path:    result.Path,
		Format:  result.Format,
		Entries: make([]EntryJSON, 0, len(result.Entries)),
	}
	for i := range result.Entries {
		file.Entries = append(file.Entries, NewEntryJSON(&result.Entries[i]))
	}
	c.files = append(c.files, file)
}

func (c *collector) report(totalDuration time.Duration) Report {
	summary := Summary{Files: len(c.files)}
	for _, f := range c.files {
		for _, e := range f.Entries {
			summary.Total++
			switch {
			case e.Skipped:
				summary.Skipped++
			case e.Valid:
				summary.Valid++
			default:
				summary.Invalid++
			}
		}
	}

	files := c.files
	if files == nil {
		files = []FileJSON{}
	}
	return Report{
		Summary:  summary,
		Files:    files,
		Errors:   c.errors,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}
}

// JSONFormatter formats results as one JSON document
type JSONFormatter struct {
	writer io.Writer
	collector
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatFile(result *requirements.FileResult) {
	f.add(result)
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(f.report(totalDuration))
}
