package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/reqspec/packages/core/grammar"
	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool

	files, valid, invalid, skipped int
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatFile(result *requirements.FileResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	f.files++
	fmt.Fprintf(f.writer, "\n%s %s\n\n", bold(result.Path), cyan("("+result.Format+")"))

	for i := range result.Entries {
		e := &result.Entries[i]
		loc := cyan(fmt.Sprintf("%4d", e.Line))

		switch {
		case e.Skipped:
			f.skipped++
			fmt.Fprintf(f.writer, "  %s %s %s %s\n", yellow("-"), loc, e.Raw, yellow("(skipped "+e.Option+")"))

		case e.Err != nil:
			f.invalid++
			fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), loc, e.Raw)
			f.writeError(e.Err)

		default:
			f.valid++
			fmt.Fprintf(f.writer, "  %s %s %s", green("✓"), loc, e.Dependency.Name)
			if e.Group != "" {
				fmt.Fprintf(f.writer, " %s", cyan("["+e.Group+"]"))
			}
			fmt.Fprintln(f.writer)
			if f.verbose {
				f.writeDetails(e)
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Requirements: ")
	if n := result.Valid(); n > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d valid", n)))
	}
	if n := result.Invalid(); n > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d invalid", n)))
	}
	if n := result.Skipped(); n > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d skipped", n)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(result.Entries))
}

func (f *ConsoleFormatter) writeError(err error) {
	red := color.New(color.FgRed).SprintFunc()

	var syntaxErr *grammar.SyntaxError
	if errors.As(err, &syntaxErr) {
		fmt.Fprintf(f.writer, "         %s %s\n", red("→"), syntaxErr.Error())
		for _, line := range strings.Split(syntaxErr.Snippet(), "\n") {
			fmt.Fprintf(f.writer, "           %s\n", line)
		}
		return
	}
	fmt.Fprintf(f.writer, "         %s %v\n", red("→"), err)
}

func (f *ConsoleFormatter) writeDetails(e *requirements.Entry) {
	dep := e.Dependency
	if dep.HasURI() {
		fmt.Fprintf(f.writer, "         url:     %s\n", dep.URI)
	} else {
		fmt.Fprintf(f.writer, "         version: %s\n", dep.Version)
	}
	if len(dep.Extras) > 0 {
		fmt.Fprintf(f.writer, "         extras:  %s\n", strings.Join(dep.Extras, ", "))
	}
	if dep.MarkerTree != nil {
		fmt.Fprintf(f.writer, "         markers: %s\n", dep.MarkerTree)
	}
}

// Flush prints the totals over every file.
func (f *ConsoleFormatter) Flush(_ time.Duration) error {
	if f.files < 2 {
		return nil
	}
	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(f.writer, "\n%s %d files, %d valid, %d invalid, %d skipped\n",
		bold("Total:"), f.files, f.valid, f.invalid, f.skipped)
	return err
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("reqspec"), version)
}
