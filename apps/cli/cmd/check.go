package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

var checkCmd = &cobra.Command{
	Use:   "check [file|directory]...",
	Short: "Check requirement files for invalid specifiers",
	Long: `Check requirements.txt style files and pyproject.toml for specifiers
that do not parse. Directories are searched for files matching the
configured include patterns. With no arguments the current directory is
checked.

Examples:
  reqspec check
  reqspec check requirements.txt requirements-dev.txt
  reqspec check ./services -o junit --output-file report.xml
  reqspec check . --watch`,
	RunE: checkCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	checkOutputFlag        string
	checkOutputFileFlag    string
	checkEnvFileFlag       string
	checkConcurrencyFlag   int
	checkWatchFlag         bool
	checkFailOnSkippedFlag bool
)

func init() {
	checkCmd.Flags().StringVarP(&checkOutputFlag, "output", "o", getEnvString("OUTPUT", ""), "Output format: console, json, yaml, tap, junit (env: REQSPEC_OUTPUT)")
	checkCmd.Flags().StringVar(&checkOutputFileFlag, "output-file", getEnvString("OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: REQSPEC_OUTPUT_FILE)")
	checkCmd.Flags().StringVar(&checkEnvFileFlag, "env-file", getEnvString("ENV_FILE", ""), "Path to .env file for ${VAR} expansion (env: REQSPEC_ENV_FILE)")
	checkCmd.Flags().IntVar(&checkConcurrencyFlag, "concurrency", getEnvInt("CONCURRENCY", 0), "Files read in parallel (env: REQSPEC_CONCURRENCY)")
	checkCmd.Flags().BoolVarP(&checkWatchFlag, "watch", "w", false, "Watch files for changes and check again")
	checkCmd.Flags().BoolVar(&checkFailOnSkippedFlag, "fail-on-skipped", getEnvBool("FAIL_ON_SKIPPED", false), "Treat skipped option lines as failures (env: REQSPEC_FAIL_ON_SKIPPED)")
}

// checker reads a fixed set of files and renders them.
type checker struct {
	out           io.Writer
	files         []string
	reader        *requirements.MultiReader
	format        string
	concurrency   int
	failOnSkipped bool
}

// run checks every file once and returns the error that decides the exit
// code. A file that cannot be read is reported and the rest are still
// checked.
func (c *checker) run(ctx context.Context) error {
	start := time.Now()
	results, errs := c.reader.ReadEach(ctx, c.files, c.concurrency)
	if err := ctx.Err(); err != nil {
		return withExit(ExitParseError, err)
	}

	if err := writeResults(c.out, c.format, results, errs, time.Since(start)); err != nil {
		return err
	}

	failed, invalid, skipped := 0, 0, 0
	for i, r := range results {
		if errs[i] != nil {
			failed++
			logger.Debug("cannot check file", "file", c.files[i], "error", errs[i])
			continue
		}
		invalid += r.Invalid()
		skipped += r.Skipped()
	}
	logger.Debug("check finished", "files", len(results), "failed", failed, "invalid", invalid, "skipped", skipped, "took", time.Since(start))

	switch {
	case failed > 0:
		return withExit(ExitParseError, nil)
	case invalid > 0 || (c.failOnSkipped && skipped > 0):
		return withExit(ExitInvalid, nil)
	}
	return nil
}

func checkCommand(cmd *cobra.Command, args []string) error {
	paths := pathArgs(args)
	files, err := collectFiles(paths, cfg.Include)
	if err != nil {
		return withExit(ExitParseError, err)
	}
	if len(files) == 0 {
		return withExit(ExitParseError, fmt.Errorf("no requirements files found in %v", paths))
	}

	envFile, explicit := cfg.EnvFile, false
	if checkEnvFileFlag != "" {
		envFile, explicit = checkEnvFileFlag, true
	}
	resolver, err := newResolver(envFile, explicit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if checkOutputFileFlag != "" {
		outFile, err := os.Create(checkOutputFileFlag)
		if err != nil {
			return withExit(ExitParseError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer outFile.Close()
		out = outFile
	}

	concurrency := cfg.Concurrency
	if checkConcurrencyFlag > 0 {
		concurrency = checkConcurrencyFlag
	}

	reader := requirements.NewMultiReader(requirements.Options{
		MaxLength: cfg.MaxLength,
		Resolver:  resolver,
	})

	c := &checker{
		out:           out,
		files:         files,
		reader:        reader,
		format:        outputName(checkOutputFlag),
		concurrency:   concurrency,
		failOnSkipped: checkFailOnSkippedFlag || cfg.GetFailOnSkipped(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = c.run(ctx)
	if !checkWatchFlag {
		return err
	}
	return c.watch(ctx)
}

// watch checks again whenever one of the files changes, until ctx is done.
func (c *checker) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return withExit(ExitParseError, fmt.Errorf("failed to create file watcher: %w", err))
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(c.files))
	for _, file := range c.files {
		watched[filepath.Clean(file)] = true
	}

	watchedDirs := make(map[string]bool)
	for _, file := range c.files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				logger.Warn("cannot watch directory", "dir", dir, "error", err)
			}
			watchedDirs[dir] = true
		}
	}

	logger.Info("watching for changes, press Ctrl+C to stop", "files", len(c.files))

	// bursts of writes to one file trigger a single check
	var debounce *time.Timer
	changed := make(chan string, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			name := event.Name
			debounce = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case changed <- name:
				default:
				}
			})

		case name := <-changed:
			logger.Info("file changed, checking again", "file", name)
			if err := c.run(ctx); err != nil && !silent(err) {
				logger.Error("check failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
