package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

var listCmd = &cobra.Command{
	Use:   "list [file|directory]...",
	Short: "List the dependencies declared in requirement files",
	Long: `List the dependencies declared in requirements.txt style files and
pyproject.toml, one per line.

Examples:
  reqspec list requirements.txt
  reqspec list ./services`,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(pathArgs(args), cfg.Include)
	if err != nil {
		return withExit(ExitParseError, err)
	}
	if len(files) == 0 {
		return withExit(ExitParseError, fmt.Errorf("no requirements files found"))
	}

	reader := requirements.NewMultiReader(requirements.Options{MaxLength: cfg.MaxLength})
	results, err := reader.ReadFiles(cmd.Context(), files, cfg.Concurrency)
	if err != nil {
		return withExit(ExitParseError, err)
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, result := range results {
		fmt.Fprintf(out, "\n%s:\n", result.Path)
		for i := range result.Entries {
			e := &result.Entries[i]
			switch {
			case e.Skipped:
				continue
			case e.Err != nil:
				invalid++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d: %v\n", result.Path, e.Line, e.Err)
				continue
			}
			fmt.Fprintf(out, "  - %s\n", describe(e))
		}
	}

	if invalid > 0 {
		return withExit(ExitInvalid, nil)
	}
	return nil
}

// describe renders an entry as "name[extras] version (group)".
func describe(e *requirements.Entry) string {
	dep := e.Dependency
	var b strings.Builder
	b.WriteString(dep.Name)
	if len(dep.Extras) > 0 {
		b.WriteString("[" + strings.Join(dep.Extras, ",") + "]")
	}
	switch {
	case dep.HasURI():
		b.WriteString(" @ " + dep.URI)
	case !dep.Version.IsAny():
		b.WriteString(" " + dep.Version.String())
	}
	if e.Group != "" {
		b.WriteString(" (" + e.Group + ")")
	}
	return b.String()
}
