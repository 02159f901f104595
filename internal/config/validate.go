package config

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not one this build reads.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNegativeRetention indicates backup_retention is below zero.
	ErrNegativeRetention = errors.New("backup_retention must be >= 0")

	// ErrUnknownComponent indicates an excluded name is not in the catalog.
	ErrUnknownComponent = errors.New("unknown catalog component")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Mark(errors.Newf("unsupported config version: %d", cfg.Version), ErrUnsupportedVersion))
	}

	for _, f := range []struct{ field, path string }{
		{"host_config_path", cfg.HostConfigPath},
		{"data_dir", cfg.DataDir},
		{"backup_dir", cfg.BackupDir},
		{"servers_dir", cfg.ServersDir},
	} {
		if err := validatePath(f.path); err != nil {
			errs = append(errs, &PathError{Field: f.field, Path: f.path, Err: err})
		}
	}

	if cfg.BackupRetention < 0 {
		errs = append(errs, ErrNegativeRetention)
	}

	known := catalog.Default(catalog.Options{}).Names()
	for _, name := range cfg.Exclude {
		if !known.Has(name) {
			errs = append(errs, &FieldError{Field: "exclude", Value: name, Err: ErrUnknownComponent})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an invalid value in a list field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
