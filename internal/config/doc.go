// Package config provides configuration management for the mcpfed CLI.
//
// This package loads and validates mcpfed's own configuration file. It is
// distinct from the host application's configuration document, which is
// handled by the configstore package.
//
// # Configuration File
//
// The file is named config.yaml and is searched for in the current
// directory and then in <xdg config>/mcpfed/ (or $MCPFED_CONFIG_DIR):
//
//	version: 1
//	host_config_path: ~/Library/Application Support/Claude/claude_desktop_config.json
//	data_dir: ~/.local/share/mcpfed
//	backup_dir: ~/.local/share/mcpfed/backups   # optional
//	servers_dir: ~/mcp-servers
//	backup_retention: 10
//	exclude:
//	  - playwright
//
// Every key can be overridden with an MCPFED_ environment variable, e.g.
// MCPFED_DATA_DIR.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// Load validates the result; failures are marked errors.ErrInvalidConfig.
package config
