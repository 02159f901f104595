// Package flags provides shared state for CLI commands.
// This package exists to avoid import cycles between the root command
// and noun subpackages (backup).
package flags

import (
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

var (
	env    *cli.Env
	envErr error
)

// Env returns the environment resolved from configuration by the root
// command. A configuration load failure is returned as a config error.
func Env() (*cli.Env, error) {
	if envErr != nil {
		return nil, errors.NewConfigError(envErr)
	}
	if env == nil {
		return nil, errors.New("configuration not loaded")
	}
	return env, nil
}

// SetEnv records the resolved environment or the error that prevented it.
// This is used by the root command after loading configuration, and by
// tests to point commands at temporary directories.
func SetEnv(e *cli.Env, err error) {
	env, envErr = e, err
}
