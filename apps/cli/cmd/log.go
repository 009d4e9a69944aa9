package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/abdul-hamid-achik/reqspec/packages/core/env"
)

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "reqspec",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newResolver returns a resolver seeded from envFile. A missing file is only
// an error when the user named it explicitly.
func newResolver(envFile string, explicit bool) (*env.Resolver, error) {
	resolver := env.NewResolver()
	if envFile == "" {
		return resolver, nil
	}

	vars, err := env.LoadDotEnv(envFile)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			logger.Debug("no env file", "path", envFile)
			return resolver, nil
		}
		return nil, withExit(ExitConfigError, err)
	}
	resolver.SetVariables(vars)
	logger.Debug("loaded env file", "path", envFile, "variables", len(vars))
	return resolver, nil
}
