package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/mcpfed/internal/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "mcpfed"

// HostConfigFileName is the host application's configuration file name.
const HostConfigFileName = "claude_desktop_config.json"

// ManifestFileName is the installation manifest's base name.
const ManifestFileName = "installation_manifest.json"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// It returns an empty string on error. Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns the directory holding mcpfed's own config file.
// Returns: <ConfigHome>/mcpfed/
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DataDir returns the directory for the manifest and backups.
// Returns: <DataHome>/mcpfed/
func DataDir() string {
	return filepath.Join(DataHome(), AppName)
}

// ManifestPath returns the default installation manifest location.
// Returns: <DataDir>/installation_manifest.json
func ManifestPath() string {
	return filepath.Join(DataDir(), ManifestFileName)
}

// BackupDir returns the default backup root.
// Returns: <DataDir>/backups/
func BackupDir() string {
	return filepath.Join(DataDir(), "backups")
}

// ServersDir returns the default root of bundled local servers.
// Returns: ~/mcp-servers/
func ServersDir() string {
	return filepath.Join(Home(), "mcp-servers")
}

// HostConfigDir returns the host application's config directory for the
// running operating system.
//
// Platform paths:
//   - darwin: ~/Library/Application Support/Claude/
//   - windows: %APPDATA%\Claude\
//   - others: <ConfigHome>/Claude/
func HostConfigDir() string {
	return hostConfigDir(runtime.GOOS, Home(), os.Getenv("APPDATA"), ConfigHome())
}

// HostConfigPath returns the full path of the host configuration file.
func HostConfigPath() string {
	return filepath.Join(HostConfigDir(), HostConfigFileName)
}

func hostConfigDir(goos, home, appData, configHome string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude")
	case "windows":
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "Claude")
	default:
		return filepath.Join(configHome, "Claude")
	}
}
