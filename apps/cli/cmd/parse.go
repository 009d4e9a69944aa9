package cmd

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/reqspec/packages/core/parser"
	"github.com/abdul-hamid-achik/reqspec/packages/output"
	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

var parseCmd = &cobra.Command{
	Use:   "parse <specifier>...",
	Short: "Parse requirement specifiers given as arguments",
	Long: `Parse one or more PEP 508 requirement specifiers and print what they
contain.

Examples:
  reqspec parse "requests[security]>=2.8.1,==2.8.*; python_version < '2.7'"
  reqspec parse "name @ http://foo.com" -o json
  reqspec parse "name[a,b]>=1.0" --query "files.0.entries.0.dependency.extras"
  reqspec parse "django>=4.0,<5" --satisfies 4.2.1`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: parseCommand,
}

var (
	parseOutputFlag    string
	parseQueryFlag     string
	parseSatisfiesFlag string
)

func init() {
	parseCmd.Flags().StringVarP(&parseOutputFlag, "output", "o", getEnvString("OUTPUT", ""), "Output format: console, json, yaml, tap, junit (env: REQSPEC_OUTPUT)")
	parseCmd.Flags().StringVarP(&parseQueryFlag, "query", "q", "", "gjson path evaluated against the JSON report")
	parseCmd.Flags().StringVar(&parseSatisfiesFlag, "satisfies", "", "Exit 1 unless this version satisfies every parsed version clause")
}

func parseCommand(cmd *cobra.Command, args []string) error {
	start := time.Now()
	result := requirements.ParseSpecifiers(requirements.FormatArgs, args, requirements.Options{
		MaxLength: cfg.MaxLength,
	})

	if parseQueryFlag != "" {
		var buf bytes.Buffer
		f := output.NewJSONFormatter(output.JSONWithWriter(&buf))
		f.FormatFile(result)
		if err := f.Flush(time.Since(start)); err != nil {
			return withExit(ExitParseError, err)
		}

		value := gjson.GetBytes(buf.Bytes(), parseQueryFlag)
		if !value.Exists() {
			return withExit(ExitUsageError, fmt.Errorf("query %q matched nothing", parseQueryFlag))
		}
		fmt.Fprintln(cmd.OutOrStdout(), value.String())
	} else {
		if err := writeResults(cmd.OutOrStdout(), outputName(parseOutputFlag), []*requirements.FileResult{result}, nil, time.Since(start)); err != nil {
			return err
		}
	}

	if result.Invalid() > 0 {
		return withExit(ExitInvalid, nil)
	}
	if parseSatisfiesFlag != "" {
		return checkSatisfies(cmd.ErrOrStderr(), result, parseSatisfiesFlag)
	}
	return nil
}

// checkSatisfies reports every parsed specifier whose version clause rejects
// version. Direct references carry no clause and always pass.
func checkSatisfies(w io.Writer, result *requirements.FileResult, version string) error {
	if _, err := parser.AnyVersion().Check(version); err != nil {
		return withExit(ExitUsageError, err)
	}

	unsatisfied := 0
	for i := range result.Entries {
		dep := result.Entries[i].Dependency
		if dep == nil || dep.HasURI() {
			continue
		}
		ok, reasons := dep.Version.Validate(version)
		if ok {
			continue
		}
		unsatisfied++
		for _, reason := range reasons {
			fmt.Fprintf(w, "%s: %v\n", dep.Name, reason)
		}
	}
	logger.Debug("version checked", "version", version, "unsatisfied", unsatisfied)

	if unsatisfied > 0 {
		return withExit(ExitInvalid, nil)
	}
	return nil
}

// outputName returns flag, falling back to the configured output format.
func outputName(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Output
}

// writeResults renders results to w with the named formatter. errs lines up
// with results; a file that failed to read is reported in place of its result.
func writeResults(w io.Writer, format string, results []*requirements.FileResult, errs []error, took time.Duration) error {
	formatter, err := output.New(format, w, cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return withExit(ExitUsageError, err)
	}

	formatter.FormatHeader(version)
	for i, result := range results {
		if i < len(errs) && errs[i] != nil {
			formatter.FormatError(errs[i])
			continue
		}
		formatter.FormatFile(result)
	}
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(took); err != nil {
			return withExit(ExitParseError, fmt.Errorf("error writing output: %w", err))
		}
	}
	return nil
}

// usageArgs makes argument count errors exit with ExitUsageError.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return withExit(ExitUsageError, err)
		}
		return nil
	}
}
