package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/reqspec/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .reqspec.yaml",
	Long: `Write a .reqspec.yaml with the default settings to the current
directory.

Examples:
  reqspec init
  reqspec init --force`,
	Args: usageArgs(cobra.NoArgs),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return withExit(ExitParseError, err)
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return withExit(ExitConfigError, fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile))
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return withExit(ExitConfigError, fmt.Errorf("failed to create config file: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'reqspec check' to check the requirement files in this directory.\n")
	return nil
}
