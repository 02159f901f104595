package installer

import (
	"context"
	"time"

	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/configstore"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/manifest"
)

// ConfigStore reads and writes the host document.
type ConfigStore interface {
	Path() string
	ReadOrEmpty() (*configstore.Document, bool, error)
	Write(doc *configstore.Document) error
}

// ManifestStore loads and persists the manifest record.
type ManifestStore interface {
	Path() string
	Load() (*manifest.Record, error)
	Save(rec *manifest.Record) error
	Clear() error
}

// Snapshotter takes a backup of a file before it is changed.
type Snapshotter interface {
	Snapshot(path, reason string) (*backup.Snapshot, error)
}

// Deps are the collaborators shared by Installer and Uninstaller.
type Deps struct {
	Config   ConfigStore
	Manifest ManifestStore
	Backups  Snapshotter
	Catalog  *catalog.Catalog

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("config store is required")
	case d.Manifest == nil:
		return errors.New("manifest store is required")
	case d.Backups == nil:
		return errors.New("backup manager is required")
	case d.Catalog == nil:
		return errors.New("catalog is required")
	}
	return nil
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// classify makes sure err carries one of the failure kinds, marking it with
// fallback when it carries none.
func classify(err error, fallback error) error {
	for _, kind := range []error{errors.ErrCorrupt, errors.ErrIO, errors.ErrWriteFailed, errors.ErrNotFound} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return errors.Mark(err, fallback)
}

// checkpoint aborts the run when ctx is done. Each write step is preceded by
// one so cancellation lands between whole-file writes.
func checkpoint(ctx context.Context, step string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "cancelled before %s", step)
	}
	return nil
}

// loadState reads the manifest and the host document. A read failure aborts
// before anything is written.
func (d Deps) loadState() (*manifest.Record, *configstore.Document, bool, error) {
	rec, err := d.Manifest.Load()
	if err != nil {
		return nil, nil, false, classify(errors.Wrap(err, "loading manifest"), errors.ErrIO)
	}

	doc, existed, err := d.Config.ReadOrEmpty()
	if err != nil {
		return nil, nil, false, classify(errors.Wrap(err, "reading host config"), errors.ErrIO)
	}

	return rec, doc, existed, nil
}

func (d Deps) snapshot(reason string) (string, error) {
	snap, err := d.Backups.Snapshot(d.Config.Path(), reason)
	if err != nil {
		return "", classify(errors.Wrap(err, "backing up host config"), errors.ErrIO)
	}
	return snap.ID, nil
}

// stamp fills the bookkeeping fields of a record about to be saved.
func (d Deps) stamp(rec *manifest.Record, now time.Time) {
	rec.SchemaVersion = manifest.SchemaVersion
	rec.UpdatedAt = now
	rec.ConfigPath = d.Config.Path()
	rec.ToolVersion = manifest.Version
}
