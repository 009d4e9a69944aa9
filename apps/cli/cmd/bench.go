package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/reqspec/packages/bench"
	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

var benchCmd = &cobra.Command{
	Use:   "bench <file|directory|specifier>...",
	Short: "Measure how long specifiers take to parse",
	Long: `Parse specifiers repeatedly and report latency percentiles. Arguments
that name an existing file or directory contribute every specifier found
in them; any other argument is benchmarked as a specifier.

Examples:
  reqspec bench requirements.txt
  reqspec bench "name; (os_name=='a' or os_name=='b') and python_version>'3'" -n 10000
  reqspec bench ./services --workers 4 -o json`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: benchCommand,
}

var (
	benchIterationsFlag int
	benchWorkersFlag    int
	benchRateFlag       float64
	benchOutputFlag     string
	benchTopFlag        int
)

func init() {
	benchCmd.Flags().IntVarP(&benchIterationsFlag, "iterations", "n", getEnvInt("BENCH_ITERATIONS", 1000), "Times each specifier is parsed (env: REQSPEC_BENCH_ITERATIONS)")
	benchCmd.Flags().IntVar(&benchWorkersFlag, "workers", 1, "Goroutines parsing in parallel")
	benchCmd.Flags().Float64Var(&benchRateFlag, "rate", 0, "Maximum parses per second (0 = unlimited)")
	benchCmd.Flags().StringVarP(&benchOutputFlag, "output", "o", "console", "Output format: console, json, yaml")
	benchCmd.Flags().IntVar(&benchTopFlag, "top", 5, "Number of slowest specifiers to show")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	specs, err := benchSpecifiers(cmd, args)
	if err != nil {
		return err
	}

	summary, err := bench.Run(cmd.Context(), specs, benchIterationsFlag,
		bench.WithWorkers(benchWorkersFlag),
		bench.WithRate(benchRateFlag),
	)
	if err != nil {
		if errors.Is(err, bench.ErrNoSpecifiers) || summary == nil {
			return withExit(ExitUsageError, err)
		}
		logger.Warn("bench stopped early", "error", err)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(benchOutputFlag) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return withExit(ExitParseError, err)
		}
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return withExit(ExitParseError, err)
		}
		if err := enc.Close(); err != nil {
			return withExit(ExitParseError, err)
		}
	case "console", "":
		r := bench.NewReporter(
			bench.WithWriter(out),
			bench.WithNoColor(cfg.GetNoColor()),
			bench.WithTop(benchTopFlag),
		)
		r.Header(version, len(specs), benchIterationsFlag)
		r.Summary(summary)
	default:
		return withExit(ExitUsageError, fmt.Errorf("unknown output format %q (want console, json or yaml)", benchOutputFlag))
	}
	return nil
}

// benchSpecifiers turns arguments into the specifiers to benchmark. Files
// contribute every non option line, valid or not.
func benchSpecifiers(cmd *cobra.Command, args []string) ([]string, error) {
	var specs, paths []string
	for _, arg := range args {
		if _, err := os.Stat(arg); err == nil {
			paths = append(paths, arg)
		} else {
			specs = append(specs, arg)
		}
	}
	if len(paths) == 0 {
		return specs, nil
	}

	files, err := collectFiles(paths, cfg.Include)
	if err != nil {
		return nil, withExit(ExitParseError, err)
	}
	reader := requirements.NewMultiReader(requirements.Options{MaxLength: cfg.MaxLength})
	results, err := reader.ReadFiles(cmd.Context(), files, cfg.Concurrency)
	if err != nil {
		return nil, withExit(ExitParseError, err)
	}

	for _, result := range results {
		for _, e := range result.Entries {
			if e.Skipped || errors.Is(e.Err, requirements.ErrTooLong) {
				continue
			}
			specs = append(specs, e.Raw)
		}
	}
	logger.Debug("collected specifiers", "files", len(files), "specifiers", len(specs))
	return specs, nil
}
