package bench

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Reporter prints a Summary for humans.
type Reporter struct {
	writer  io.Writer
	noColor bool
	top     int

	green *color.Color
	red   *color.Color
	cyan  *color.Color
	bold  *color.Color
}

type ReporterOption func(*Reporter)

func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// WithTop sets how many of the slowest specifiers are listed.
func WithTop(n int) ReporterOption {
	return func(r *Reporter) {
		r.top = n
	}
}

func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
		top:    5,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.noColor {
		color.NoColor = true
	}
	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.cyan = color.New(color.FgCyan)
	r.bold = color.New(color.Bold)
	return r
}

func (r *Reporter) Header(version string, specifiers, iterations int) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "reqspec bench %s\n", version)
	r.cyan.Fprintf(r.writer, "%d specifiers x %d iterations\n", specifiers, iterations)
}

func (r *Reporter) Summary(s *Summary) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "BENCH SUMMARY")
	fmt.Fprintln(r.writer, strings.Repeat("─", 40))

	fmt.Fprintf(r.writer, "Duration:   %s\n", formatDuration(s.Duration))
	fmt.Fprintf(r.writer, "Parses:     ")
	r.bold.Fprintf(r.writer, "%s", formatNumber(s.Count))
	fmt.Fprintf(r.writer, " (%.0f/s)\n", s.Rate)

	fmt.Fprintf(r.writer, "Failed:     ")
	if s.Errors > 0 {
		r.red.Fprintf(r.writer, "%s", formatNumber(s.Errors))
	} else {
		r.green.Fprintf(r.writer, "%s", formatNumber(s.Errors))
	}
	fmt.Fprintf(r.writer, " (%.1f%%)\n", s.ErrorRate()*100)

	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "LATENCY")
	fmt.Fprintf(r.writer, "  p50: %-6s | p95: %-6s | p99: %-6s | max: %s\n",
		formatLatency(s.P50), formatLatency(s.P95), formatLatency(s.P99), formatLatency(s.Max))
	fmt.Fprintf(r.writer, "  min: %-6s | mean: %s\n", formatLatency(s.Min), formatLatency(s.Mean))

	n := r.top
	if n > len(s.Specifiers) {
		n = len(s.Specifiers)
	}
	if n > 0 {
		fmt.Fprintln(r.writer)
		r.bold.Fprintln(r.writer, "SLOWEST")
		for i, ss := range s.Specifiers[:n] {
			fmt.Fprintf(r.writer, "  %d. %s\n", i+1, ss.Specifier)
			fmt.Fprintf(r.writer, "     mean: %s | p99: %s | max: %s\n",
				formatLatency(ss.Mean), formatLatency(ss.P99), formatLatency(ss.Max))
			if ss.Error != "" {
				r.red.Fprintf(r.writer, "     error: %s\n", ss.Error)
			}
		}
	}
	fmt.Fprintln(r.writer)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dμs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatNumber formats a number with commas
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}

	out := make([]byte, 0, len(s)+(len(s)-1)/3)
	start := len(s) % 3
	if start == 0 {
		start = 3
	}
	out = append(out, s[:start]...)
	for i := start; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
