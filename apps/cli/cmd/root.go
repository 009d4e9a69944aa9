package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
	"github.com/abdul-hamid-achik/reqspec/packages/core/env"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	verboseFlag bool
	noColorFlag bool

	// set by setup before any command runs
	cfg    *config.Config
	logger *log.Logger

	// REQSPEC_ settings from the environment, keyed without the prefix
	envDefaults = env.LoadSystemEnv("REQSPEC_")
)

var rootCmd = &cobra.Command{
	Use:   "reqspec",
	Short: "Parse and check Python requirement specifiers.",
	Long: `reqspec parses PEP 508 requirement specifiers such as
"requests[security]>=2.8.1,==2.8.*; python_version < '2.7'" and checks
requirements.txt and pyproject.toml files for invalid entries.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(run(os.Args[1:]))
}

// run executes the command line args and returns the exit code.
func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err != nil && !silent(err) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return exitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("CONFIG", ""), "Path to config file (env: REQSPEC_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("VERBOSE", false), "Verbose output (env: REQSPEC_VERBOSE)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("NO_COLOR", false), "Disable colored output (env: REQSPEC_NO_COLOR)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExit(ExitUsageError, err)
	})

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// skipSetup replaces setup on commands that must work even when the config
// file is broken.
func skipSetup(*cobra.Command, []string) error {
	return nil
}

// setup loads the config file and merges the global flags on top of it.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExit(ExitConfigError, fmt.Errorf("config: %w", err))
	}
	cfg = loaded.Merge(flagOverlay())

	logger = newLogger(cmd.ErrOrStderr(), cfg.GetVerbose())
	logger.Debug("configuration loaded", "config", configFlag, "output", cfg.Output, "concurrency", cfg.Concurrency)
	return nil
}

// flagOverlay holds only the global flags the user turned on, so unset flags
// never override the config file.
func flagOverlay() *config.Config {
	overlay := &config.Config{}
	if verboseFlag {
		overlay.Verbose = config.BoolPtr(true)
	}
	if noColorFlag {
		overlay.NoColor = config.BoolPtr(true)
	}
	return overlay
}

// Environment variable helpers, keyed without the REQSPEC_ prefix
func getEnvString(key, defaultVal string) string {
	if val := envDefaults[key]; val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := envDefaults[key]; val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := envDefaults[key]; val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
