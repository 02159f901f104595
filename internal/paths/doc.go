// Package paths resolves the filesystem locations mcpfed reads and writes.
//
// The host configuration file lives where the desktop host application
// expects it, which differs per operating system:
//
//	| OS      | Host config directory                  |
//	|---------|----------------------------------------|
//	| macOS   | ~/Library/Application Support/Claude/  |
//	| Windows | %APPDATA%\Claude\                      |
//	| Linux   | ~/.config/Claude/                      |
//
// mcpfed's own state follows the XDG Base Directory layout via
// github.com/adrg/xdg:
//
//	<DataHome>/mcpfed/
//	├── installation_manifest.json
//	└── backups/
//
// Bundled local servers are unpacked under ~/mcp-servers/ by default.
//
// Every default can be overridden through configuration; see package config.
package paths
