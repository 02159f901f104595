package installer

import (
	"context"

	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/logging"
	"github.com/thoreinstein/mcpfed/internal/merge"
	"github.com/thoreinstein/mcpfed/internal/nameset"
)

// UninstallOptions configures an uninstall run.
type UninstallOptions struct {
	// DryRun plans without taking a backup or writing anything.
	DryRun bool

	// Force removes every catalog entry in the document regardless of who
	// added it. Entries outside the catalog are still never touched.
	Force bool

	// Names limits the run to these components. Empty means all.
	Names []string
}

// UninstallResult summarizes an uninstall run.
type UninstallResult struct {
	Plan merge.UninstallPlan

	// Removed lists the names deleted from the document.
	Removed []string

	// Preserved lists pre-existing names that were left alone.
	Preserved []string

	// Missing lists tracked names that were already gone from the document.
	Missing []string

	// NothingToUninstall is set when no manifest exists and Force was not
	// requested. It is a successful no-op.
	NothingToUninstall bool

	// ManifestCleared is set when the manifest was deleted.
	ManifestCleared bool

	BackupID     string
	ConfigPath   string
	ManifestPath string
	DryRun       bool
	Changed      bool
}

// Uninstaller removes entries this tool added from the host document.
type Uninstaller struct {
	deps Deps
}

// NewUninstaller creates an Uninstaller.
func NewUninstaller(deps Deps) (*Uninstaller, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Uninstaller{deps: deps}, nil
}

// Uninstall removes the entries recorded as installed by this tool. Entries
// that existed before the first install, and anything outside the catalog,
// keep their values and position. With Force, every catalog entry in the
// document is removed instead.
func (u *Uninstaller) Uninstall(ctx context.Context, opts UninstallOptions) (*UninstallResult, error) {
	log := logging.FromContext(ctx)
	d := u.deps

	res := &UninstallResult{
		ConfigPath:   d.Config.Path(),
		ManifestPath: d.Manifest.Path(),
		DryRun:       opts.DryRun,
	}

	log.Debug("loading state", "config", d.Config.Path(), "manifest", d.Manifest.Path())
	rec, doc, _, err := d.loadState()
	if err != nil {
		return nil, err
	}

	if rec == nil && !opts.Force {
		log.Info("no manifest found, nothing to uninstall")
		res.NothingToUninstall = true
		return res, nil
	}

	var filter nameset.Set
	if len(opts.Names) > 0 {
		filter = nameset.New(opts.Names...)
	}

	plan := merge.PlanUninstall(doc.Names(), doc.Intact(d.Catalog), d.Catalog, rec, merge.UninstallOptions{
		Force: opts.Force,
		Names: filter,
	})
	res.Plan = plan
	res.Removed = plan.ToRemove.Sorted()
	res.Preserved = plan.Preserved.Sorted()
	res.Missing = plan.Missing.Sorted()
	res.Changed = plan.Changes(rec)

	for name := range plan.ToRemove {
		log.Log(ctx, logging.LevelTrace, "planned removal", "name", name)
	}
	log.Info("uninstall plan", "remove", plan.ToRemove.Len(), "preserve", plan.Preserved.Len(),
		"missing", plan.Missing.Len(), "force", opts.Force, "dry_run", opts.DryRun)

	if opts.DryRun || !res.Changed {
		return res, nil
	}

	if err := checkpoint(ctx, "backup"); err != nil {
		return nil, err
	}
	id, err := d.snapshot("uninstall")
	if err != nil {
		return nil, err
	}
	res.BackupID = id
	log.Info("backed up host config", "id", id)

	if plan.ToRemove.Len() > 0 {
		if err := checkpoint(ctx, "writing host config"); err != nil {
			return nil, err
		}
		log.Debug("writing host config", "path", d.Config.Path())
		if err := d.Config.Write(doc.WithRemoved(plan.ToRemove)); err != nil {
			return nil, classify(errors.Wrap(err, "writing host config"), errors.ErrWriteFailed)
		}
	}

	if rec == nil {
		log.Info("uninstall complete", "removed", len(res.Removed))
		return res, nil
	}

	if err := checkpoint(ctx, "updating manifest"); err != nil {
		return nil, err
	}

	if plan.ClearManifest {
		log.Debug("clearing manifest", "path", d.Manifest.Path())
		if err := d.Manifest.Clear(); err != nil {
			return nil, classify(errors.Wrap(err, "clearing manifest"), errors.ErrWriteFailed)
		}
		res.ManifestCleared = true
	} else {
		updated := rec.Clone()
		updated.InstalledByUs = plan.InstalledByUs
		updated.AlreadyExisted = plan.AlreadyExisted
		updated.Pending = nil
		d.stamp(updated, d.now())

		log.Debug("rewriting manifest", "path", d.Manifest.Path(), "remaining", updated.InstalledByUs.Len())
		if err := d.Manifest.Save(updated); err != nil {
			return nil, classify(errors.Wrap(err, "writing manifest"), errors.ErrWriteFailed)
		}
	}

	log.Info("uninstall complete", "removed", len(res.Removed), "manifest_cleared", res.ManifestCleared)
	return res, nil
}
