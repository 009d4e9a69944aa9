package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

// Formatter renders requirement file results.
type Formatter interface {
	FormatFile(result *requirements.FileResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that write everything at the end.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the names accepted by New.
var Formats = []string{"console", "json", "yaml", "tap", "junit"}

// New returns the formatter for name, writing to w.
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "console":
		return NewConsoleFormatter(
			WithWriter(w),
			WithVerbose(verbose),
			WithNoColor(noColor),
		), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "yaml", "yml":
		return NewYAMLFormatter(YAMLWithWriter(w)), nil
	case "tap":
		return NewTAPFormatter(TAPWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

// entryName is the label used for an entry in test style reports.
func entryName(e *requirements.Entry) string {
	label := fmt.Sprintf("line %d: %s", e.Line, e.Raw)
	if e.Group != "" {
		label = fmt.Sprintf("%s [%s]", label, e.Group)
	}
	return label
}
