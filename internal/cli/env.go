// Package cli provides CLI-specific types and utilities for the mcpfed command.
package cli

import (
	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/config"
	"github.com/thoreinstein/mcpfed/internal/configstore"
	"github.com/thoreinstein/mcpfed/internal/installer"
	"github.com/thoreinstein/mcpfed/internal/manifest"
)

// Env holds the stores every command works against, resolved from the
// loaded configuration.
type Env struct {
	Config   *config.Config
	Host     *configstore.Store
	Manifest *manifest.Store
	Backups  *backup.Manager
	Catalog  *catalog.Catalog
}

// NewEnv resolves stores from cfg.
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Config:   cfg,
		Host:     configstore.NewStore(cfg.HostConfigPath),
		Manifest: manifest.NewStore(cfg.ManifestPath()),
		Backups:  backup.NewManager(backup.WithBackupDir(cfg.BackupDir)),
		Catalog:  cfg.Catalog(),
	}
}

// Deps returns the installer collaborators backed by e.
func (e *Env) Deps() installer.Deps {
	return installer.Deps{
		Config:   e.Host,
		Manifest: e.Manifest,
		Backups:  e.Backups,
		Catalog:  e.Catalog,
	}
}
