// Package manifest persists the record of which components mcpfed added to
// the host configuration and which it found already present.
package manifest

import (
	"encoding/json"
	"os"
	"runtime"
	"time"

	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/nameset"
	"github.com/thoreinstein/mcpfed/pkg/fileutil"
)

// SchemaVersion is the newest record format this build understands.
const SchemaVersion = 1

// FileName is the manifest's base name inside the data directory.
const FileName = "installation_manifest.json"

// filePerm keeps the manifest private to the user.
const filePerm = 0o600

// Version is set at build time via ldflags.
var Version = "dev"

// Record is the persisted manifest.
type Record struct {
	SchemaVersion int       `json:"schemaVersion" yaml:"schemaVersion"`
	InstalledAt   time.Time `json:"installedAt" yaml:"installedAt"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero" yaml:"updatedAt,omitempty"`

	// InstalledByUs holds names this tool added. Only these are removed by a
	// normal uninstall.
	InstalledByUs nameset.Set `json:"installedByUs" yaml:"installedByUs"`

	// AlreadyExisted holds names found in the document before this tool
	// would have added them. Recorded for transparency, never acted upon.
	AlreadyExisted nameset.Set `json:"alreadyExisted" yaml:"alreadyExisted"`

	// Pending holds names an interrupted install was about to add. It is
	// written before the host document and cleared once the run completes,
	// so a retry can tell our own entries from the user's.
	Pending nameset.Set `json:"pending,omitempty" yaml:"pending,omitempty"`

	HostPlatform string `json:"hostPlatform" yaml:"hostPlatform"`
	ToolVersion  string `json:"toolVersion,omitempty" yaml:"toolVersion,omitempty"`
	ConfigPath   string `json:"configPath,omitempty" yaml:"configPath,omitempty"`
}

// NewRecord returns an empty record stamped with now.
func NewRecord(now time.Time) *Record {
	return &Record{
		SchemaVersion:  SchemaVersion,
		InstalledAt:    now.UTC(),
		InstalledByUs:  nameset.New(),
		AlreadyExisted: nameset.New(),
		HostPlatform:   runtime.GOOS,
		ToolVersion:    Version,
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := *r
	out.InstalledByUs = r.InstalledByUs.Clone()
	out.AlreadyExisted = r.AlreadyExisted.Clone()
	if r.Pending != nil {
		out.Pending = r.Pending.Clone()
	}
	return &out
}

// Tracked returns every name the record knows about.
func (r *Record) Tracked() nameset.Set {
	return r.InstalledByUs.Union(r.AlreadyExisted)
}

// Store loads and saves the manifest at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store for the manifest at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the manifest path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the manifest. A missing file returns (nil, nil): the tool has
// never installed anything. Unparseable bytes or an unsupported schema
// version return an error marked [errors.ErrCorrupt].
func (s *Store) Load() (*Record, error) {
	data, err := fileutil.ReadFileWithLimit(s.path)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.NewCorruptError(s.path, err)
	}

	if rec.SchemaVersion < 1 || rec.SchemaVersion > SchemaVersion {
		return nil, errors.NewCorruptError(s.path,
			errors.Newf("unsupported schema version %d", rec.SchemaVersion))
	}

	if rec.InstalledByUs == nil {
		rec.InstalledByUs = nameset.New()
	}
	if rec.AlreadyExisted == nil {
		rec.AlreadyExisted = nameset.New()
	}

	return &rec, nil
}

// Save writes rec atomically. Failures are marked [errors.ErrWriteFailed].
func (s *Store) Save(rec *Record) error {
	if rec == nil {
		return errors.New("manifest record is nil")
	}
	if err := fileutil.AtomicWriteJSONWithPerm(s.path, rec, filePerm); err != nil {
		return errors.Mark(errors.Wrapf(err, "writing manifest %s", s.path), errors.ErrWriteFailed)
	}
	return nil
}

// Clear deletes the manifest. It is a no-op if the file is already absent.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Mark(errors.Wrapf(err, "removing manifest %s", s.path), errors.ErrWriteFailed)
	}
	return nil
}
