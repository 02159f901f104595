package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/paths"
)

// isolate points every default search path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MCPFED_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit(t *testing.T) {
	isolate(t)
	Init()

	// Check defaults are set
	if viper.GetInt("version") != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt("version"))
	}
	if got := viper.GetInt("backup_retention"); got != DefaultBackupRetention {
		t.Errorf("backup_retention default = %d, want %d", got, DefaultBackupRetention)
	}
	if got := viper.GetString("data_dir"); got != paths.DataDir() {
		t.Errorf("data_dir default = %q, want %q", got, paths.DataDir())
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)
	Init()

	// Load with no config file should not error
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.HostConfigPath != paths.HostConfigPath() {
		t.Errorf("HostConfigPath = %q, want %q", cfg.HostConfigPath, paths.HostConfigPath())
	}
	if want := filepath.Join(cfg.DataDir, "backups"); cfg.BackupDir != want {
		t.Errorf("BackupDir = %q, want %q", cfg.BackupDir, want)
	}
	if want := filepath.Join(cfg.DataDir, paths.ManifestFileName); cfg.ManifestPath() != want {
		t.Errorf("ManifestPath() = %q, want %q", cfg.ManifestPath(), want)
	}
	if FileUsed() != "" {
		t.Errorf("FileUsed() = %q, want empty", FileUsed())
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "data_dir: /srv/mcpfed\nbackup_retention: 3\nexclude:\n  - playwright\n")

	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DataDir != "/srv/mcpfed" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.BackupDir != filepath.Join("/srv/mcpfed", "backups") {
		t.Errorf("BackupDir = %q, want derived from data_dir", cfg.BackupDir)
	}
	if cfg.BackupRetention != 3 {
		t.Errorf("BackupRetention = %d, want 3", cfg.BackupRetention)
	}
	if cfg.Catalog().Has("playwright") {
		t.Error("Catalog() should drop excluded names")
	}
	if !cfg.Catalog().Has("memory") {
		t.Error("Catalog() should keep other names")
	}
}

func TestLoad_SearchPath(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "servers_dir: /opt/servers\n")

	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServersDir != "/opt/servers" {
		t.Errorf("ServersDir = %q, want /opt/servers", cfg.ServersDir)
	}
	if FileUsed() != filepath.Join(dir, "config.yaml") {
		t.Errorf("FileUsed() = %q", FileUsed())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("MCPFED_BACKUP_DIR", "/tmp/snapshots")
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BackupDir != "/tmp/snapshots" {
		t.Errorf("BackupDir = %q, want /tmp/snapshots", cfg.BackupDir)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	isolate(t)
	configPath := writeConfig(t, t.TempDir(), "servers_dir: ~/code/servers\n")
	Init()

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if want := filepath.Join(paths.Home(), "code", "servers"); cfg.ServersDir != want {
		t.Errorf("ServersDir = %q, want %q", cfg.ServersDir, want)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)
	Init()

	// Load with non-existent config file should error
	_, err := Load("/non/existent/path/config.yaml")
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid version",
			content: "version: 2\n",
			wantErr: "unsupported config version: 2",
		},
		{
			name:    "negative retention",
			content: "backup_retention: -1\n",
			wantErr: "backup_retention must be >= 0",
		},
		{
			name:    "unknown excluded component",
			content: "exclude:\n  - not-a-server\n",
			wantErr: "exclude: unknown catalog component: not-a-server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			Init()

			configPath := writeConfig(t, t.TempDir(), tt.content)

			_, err := Load(configPath)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if err.Error() != "validating config: "+tt.wantErr {
				t.Errorf("Load() error = %v, want %v", err, "validating config: "+tt.wantErr)
			}
			if !errors.Is(err, errors.ErrInvalidConfig) {
				t.Error("expected error marked ErrInvalidConfig")
			}
		})
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	dirB := isolate(t)

	// 1. Load a specific file
	dir := t.TempDir()
	fileA := filepath.Join(dir, "config_a.yaml")
	if err := os.WriteFile(fileA, []byte("servers_dir: /a\n"), 0600); err != nil {
		t.Fatal(err)
	}

	Init()
	if _, err := Load(fileA); err != nil {
		t.Fatalf("First Load failed: %v", err)
	}

	// 2. Setup a default config file in the search directory
	writeConfig(t, dirB, "servers_dir: /b\n")

	// 3. Re-Initialize. This SHOULD clear the specific file from step 1.
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Second Load failed: %v", err)
	}
	if cfg.ServersDir != "/b" {
		t.Errorf("Expected config from default path, got ServersDir %q (file %s)", cfg.ServersDir, FileUsed())
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Version: 1, DataDir: "/d", BackupRetention: 10}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"nul byte in path", func(c *Config) { c.DataDir = "/d\x00x" }, ErrInvalidPath},
		{"dot path", func(c *Config) { c.BackupDir = "." }, ErrInvalidPath},
		{"negative retention", func(c *Config) { c.BackupRetention = -2 }, ErrNegativeRetention},
		{"unknown exclude", func(c *Config) { c.Exclude = []string{"nope"} }, ErrUnknownComponent},
		{"version zero", func(c *Config) { c.Version = 0 }, ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if tt.wantErr == nil {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want none", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if !errors.Is(errs[0], tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", errs[0], tt.wantErr)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	if errs := Validate(nil); len(errs) != 1 {
		t.Errorf("Validate(nil) = %v, want one error", errs)
	}
}
