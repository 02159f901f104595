// Package config provides configuration management for mcpfed using Viper.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/paths"
)

// EnvPrefix prefixes every environment override, e.g. MCPFED_DATA_DIR.
const EnvPrefix = "MCPFED"

// DefaultBackupRetention is how many snapshots "backup prune" keeps by default.
const DefaultBackupRetention = 10

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version" toml:"version" json:"version"`

	// HostConfigPath overrides the host application's configuration file.
	HostConfigPath string `mapstructure:"host_config_path" yaml:"host_config_path" toml:"host_config_path" json:"host_config_path"`

	// DataDir holds the manifest.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" toml:"data_dir" json:"data_dir"`

	// BackupDir holds snapshots. Defaults to <DataDir>/backups.
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir" toml:"backup_dir" json:"backup_dir"`

	// ServersDir is the root of bundled-local component checkouts.
	ServersDir string `mapstructure:"servers_dir" yaml:"servers_dir" toml:"servers_dir" json:"servers_dir"`

	BackupRetention int `mapstructure:"backup_retention" yaml:"backup_retention" toml:"backup_retention" json:"backup_retention"`

	// Exclude names catalog entries this machine never installs.
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude,omitempty"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
// It resets any previous Viper state.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
	}

	// Environment variable support
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("host_config_path", paths.HostConfigPath())
	viper.SetDefault("data_dir", paths.DataDir())
	viper.SetDefault("backup_dir", "")
	viper.SetDefault("servers_dir", paths.ServersDir())
	viper.SetDefault("backup_retention", DefaultBackupRetention)
	viper.SetDefault("exclude", []string{})
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
// Validation failures are marked [errors.ErrInvalidConfig].
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load falls back to defaults
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	cfg.resolve()

	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.Mark(errors.Newf("validating config: %s", strings.Join(msgs, "; ")), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// FileUsed returns the config file Viper loaded, or "" when defaults apply.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// resolve expands "~" and fills directories derived from other fields.
func (c *Config) resolve() {
	c.HostConfigPath = expandHome(c.HostConfigPath)
	c.DataDir = expandHome(c.DataDir)
	c.BackupDir = expandHome(c.BackupDir)
	c.ServersDir = expandHome(c.ServersDir)
	if c.BackupDir == "" && c.DataDir != "" {
		c.BackupDir = filepath.Join(c.DataDir, "backups")
	}
}

// ManifestPath returns the manifest location inside DataDir.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.DataDir, paths.ManifestFileName)
}

// Catalog returns the default catalog for this machine with excluded
// names removed.
func (c *Config) Catalog() *catalog.Catalog {
	return catalog.Default(catalog.Options{
		Home:       paths.Home(),
		ServersDir: c.ServersDir,
	}).Without(c.Exclude...)
}

func expandHome(p string) string {
	if p == "~" {
		return paths.Home()
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return filepath.Join(paths.Home(), rest)
	}
	return p
}
