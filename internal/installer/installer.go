// Package installer orchestrates install and uninstall runs against the host
// configuration.
//
// Both operations follow the same order: read the manifest and host document,
// plan, back up, write the document, then write the manifest. Install also
// journals the names it is about to add before the document write; if that
// write does not happen the prior manifest is put back, so the manifest never
// claims an entry the document does not have.
package installer

import (
	"context"
	"runtime"

	"github.com/thoreinstein/mcpfed/internal/configstore"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/logging"
	"github.com/thoreinstein/mcpfed/internal/manifest"
	"github.com/thoreinstein/mcpfed/internal/merge"
)

// InstallOptions configures an install run.
type InstallOptions struct {
	// DryRun plans without taking a backup or writing anything.
	DryRun bool
}

// InstallResult summarizes an install run.
type InstallResult struct {
	Plan merge.InstallPlan

	// Installed lists the names added to the document.
	Installed []string

	// AlreadyPresent lists catalog names the document already had.
	AlreadyPresent []string

	// BackupID identifies the snapshot taken before writing, if any.
	BackupID string

	ConfigPath   string
	ManifestPath string
	DryRun       bool

	// Changed is false when the run found nothing to do.
	Changed bool
}

// Installer adds catalog entries to the host document.
type Installer struct {
	deps Deps
}

// NewInstaller creates an Installer.
func NewInstaller(deps Deps) (*Installer, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Installer{deps: deps}, nil
}

// Install adds every catalog entry missing from the host document and
// records what it added. Entries already configured are never overwritten.
//
// Errors are marked with one of [errors.ErrCorrupt], [errors.ErrIO] or
// [errors.ErrWriteFailed].
func (i *Installer) Install(ctx context.Context, opts InstallOptions) (*InstallResult, error) {
	log := logging.FromContext(ctx)
	d := i.deps

	log.Debug("loading state", "config", d.Config.Path(), "manifest", d.Manifest.Path())
	prior, doc, existed, err := d.loadState()
	if err != nil {
		return nil, err
	}

	plan := merge.PlanInstall(doc.Names(), doc.Intact(d.Catalog), d.Catalog, prior)
	res := &InstallResult{
		Plan:           plan,
		Installed:      plan.AddNames().Sorted(),
		AlreadyPresent: plan.ToSkip.Sorted(),
		ConfigPath:     d.Config.Path(),
		ManifestPath:   d.Manifest.Path(),
		DryRun:         opts.DryRun,
		Changed:        plan.Changes(prior),
	}

	for _, e := range plan.ToAdd {
		log.Log(ctx, logging.LevelTrace, "planned add", "name", e.Name, "kind", e.Kind)
	}
	for name := range plan.NewAlreadyExisted {
		log.Log(ctx, logging.LevelTrace, "classified pre-existing", "name", name)
	}
	log.Info("install plan", "add", len(plan.ToAdd), "skip", plan.ToSkip.Len(), "dry_run", opts.DryRun)

	if opts.DryRun || !res.Changed {
		return res, nil
	}

	if existed {
		if err := checkpoint(ctx, "backup"); err != nil {
			return nil, err
		}
		id, err := d.snapshot("install")
		if err != nil {
			return nil, err
		}
		res.BackupID = id
		log.Info("backed up host config", "id", id)
	}

	now := d.now()
	base := prior
	if base == nil {
		base = manifest.NewRecord(now)
	} else {
		base = base.Clone()
	}
	base.HostPlatform = runtime.GOOS

	if len(plan.ToAdd) > 0 {
		// Journal the names first so a crash after the document write is
		// recovered as ours on the next run.
		journal := base.Clone()
		journal.Pending = plan.AddNames().Union(base.Pending)
		d.stamp(journal, now)

		if err := checkpoint(ctx, "writing manifest journal"); err != nil {
			return nil, err
		}
		if err := d.Manifest.Save(journal); err != nil {
			return nil, classify(errors.Wrap(err, "journaling install"), errors.ErrWriteFailed)
		}

		if err := d.writeAdded(ctx, doc, plan); err != nil {
			d.restoreManifest(ctx, prior)
			return nil, err
		}
	}

	rec := base
	rec.InstalledByUs = plan.InstalledByUs
	rec.AlreadyExisted = plan.AlreadyExisted
	rec.Pending = nil
	d.stamp(rec, now)

	if err := checkpoint(ctx, "writing manifest"); err != nil {
		return nil, err
	}
	log.Debug("writing manifest", "path", d.Manifest.Path())
	if err := d.Manifest.Save(rec); err != nil {
		return nil, classify(errors.Wrap(err, "writing manifest"), errors.ErrWriteFailed)
	}

	log.Info("install complete", "installed", len(res.Installed), "already_present", len(res.AlreadyPresent))
	return res, nil
}

func (d Deps) writeAdded(ctx context.Context, doc *configstore.Document, plan merge.InstallPlan) error {
	updated, err := doc.WithAdded(plan.ToAdd)
	if err != nil {
		return errors.Mark(err, errors.ErrWriteFailed)
	}

	if err := checkpoint(ctx, "writing host config"); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("writing host config", "path", d.Config.Path())
	if err := d.Config.Write(updated); err != nil {
		return classify(errors.Wrap(err, "writing host config"), errors.ErrWriteFailed)
	}
	return nil
}

// restoreManifest puts back the record that was current before the journal
// was written. A failure is logged; the caller's error takes precedence.
func (d Deps) restoreManifest(ctx context.Context, prior *manifest.Record) {
	var err error
	if prior == nil {
		err = d.Manifest.Clear()
	} else {
		err = d.Manifest.Save(prior)
	}
	if err != nil {
		logging.FromContext(ctx).Warn("restoring manifest after failed install", "path", d.Manifest.Path(), "error", err)
	}
}
