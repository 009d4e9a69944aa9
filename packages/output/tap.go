package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

// TAPFormatter reports every requirement line as a TAP test point
type TAPFormatter struct {
	writer    io.Writer
	testCount int
	results   []tapResult
	errors    []string
}

type tapResult struct {
	number  int
	name    string
	file    string
	skipped bool
	option  string
	err     string
	kind    string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer:  os.Stdout,
		results: make([]tapResult, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatFile(result *requirements.FileResult) {
	for i := range result.Entries {
		e := &result.Entries[i]
		f.testCount++
		tr := tapResult{
			number:  f.testCount,
			name:    entryName(e),
			file:    result.Path,
			skipped: e.Skipped,
			option:  e.Option,
		}
		if e.Err != nil {
			tr.err = e.Err.Error()
			tr.kind = ErrorKind(e.Err)
		}
		f.results = append(f.results, tr)
	}
}

func (f *TAPFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush
}

// Flush writes the accumulated TAP output
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", f.testCount)

	for _, r := range f.results {
		if r.skipped {
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP option %s\n", r.number, r.name, r.option)
			continue
		}

		if r.err != "" {
			fmt.Fprintf(f.writer, "not ok %d - %s\n", r.number, r.name)
			fmt.Fprintf(f.writer, "  ---\n")
			fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(r.err))
			fmt.Fprintf(f.writer, "  kind: %s\n", r.kind)
			fmt.Fprintf(f.writer, "  file: %s\n", escapeYAML(r.file))
			fmt.Fprintf(f.writer, "  ...\n")
			continue
		}

		fmt.Fprintf(f.writer, "ok %d - %s\n", r.number, r.name)
	}

	for _, e := range f.errors {
		fmt.Fprintf(f.writer, "# error: %s\n", e)
	}

	fmt.Fprintln(f.writer)
	return nil
}

// escapeYAML quotes s when it contains YAML special characters
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", `\n`)
		return "\"" + s + "\""
	}
	return s
}
