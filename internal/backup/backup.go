package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/paths"
	"github.com/thoreinstein/mcpfed/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Manager handles snapshot creation, restoration, and cleanup.
type Manager struct {
	rootDir string
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		if dir != "" {
			m.rootDir = dir
		}
	}
}

// WithClock overrides the time source used for snapshot IDs.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir: paths.BackupDir(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the root backup directory.
func (m *Manager) Dir() string {
	return m.rootDir
}

// Snapshot copies the current bytes of path into a new snapshot directory.
// If path does not exist, the snapshot records that instead of failing.
// Every call creates a distinct snapshot; IDs strictly increase even when
// the clock does not advance between calls.
//
// Failures are marked [errors.ErrIO].
func (m *Manager) Snapshot(path, reason string) (*Snapshot, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "resolving %s", path), errors.ErrIO)
	}

	existed := true
	data, err := fileutil.ReadFileWithLimit(abs)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrapf(err, "reading %s for backup", abs)
		}
		existed = false
	}

	var mode os.FileMode
	if existed {
		if info, err := os.Stat(abs); err == nil {
			mode = info.Mode().Perm()
		}
	}

	id, dir, err := m.createSnapshotDir()
	if err != nil {
		return nil, errors.Mark(err, errors.ErrIO)
	}

	snap := &Snapshot{
		Version:      SnapshotVersion,
		ID:           id,
		CreatedAt:    m.now().UTC(),
		Reason:       reason,
		OriginalPath: abs,
		FileName:     filepath.Base(abs),
		Existed:      existed,
		Mode:         mode,
		ToolVersion:  Version,
	}

	if existed {
		sum := sha256.Sum256(data)
		snap.SHA256Hash = hex.EncodeToString(sum[:])
		snap.Size = int64(len(data))

		if err := fileutil.AtomicWriteFile(filepath.Join(dir, snap.FileName), data, 0o600); err != nil {
			os.RemoveAll(dir)
			return nil, errors.Mark(errors.Wrap(err, "copying file into backup"), errors.ErrIO)
		}
	}

	if err := fileutil.AtomicWriteJSONWithPerm(filepath.Join(dir, metaFileName), snap, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Mark(errors.Wrap(err, "writing snapshot metadata"), errors.ErrIO)
	}

	return snap, nil
}

// createSnapshotDir reserves a new, unique snapshot directory.
func (m *Manager) createSnapshotDir() (string, string, error) {
	if err := os.MkdirAll(m.rootDir, paths.DefaultDirPerm); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}

	t := m.now().UTC()
	if latest, err := m.latestID(); err == nil {
		if last, perr := time.Parse(idLayout, latest); perr == nil && !t.After(last) {
			t = last.Add(time.Nanosecond)
		}
	}

	for range 1000 {
		id := t.Format(idLayout)
		dir := filepath.Join(m.rootDir, id)
		err := os.Mkdir(dir, paths.DefaultDirPerm)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrap(err, "creating snapshot directory")
		}
		t = t.Add(time.Nanosecond)
	}
	return "", "", errors.New("could not allocate a unique snapshot ID")
}

// latestID returns the lexically greatest snapshot directory name.
func (m *Manager) latestID() (string, error) {
	ids, err := m.ids()
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNoBackupsFound
	}
	return ids[len(ids)-1], nil
}

// ids returns snapshot directory names in ascending order.
func (m *Manager) ids() ([]string, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := time.Parse(idLayout, entry.Name()); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}
	slices.Sort(ids)
	return ids, nil
}

// Restore puts the file recorded by snapshot id back in place. The copy is
// verified against its recorded hash first and written atomically. A
// snapshot of an absent file removes the file.
//
// Restore is never called by install or uninstall.
func (m *Manager) Restore(id string) (*Snapshot, error) {
	snap, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	if !snap.Existed {
		if err := os.Remove(snap.OriginalPath); err != nil && !os.IsNotExist(err) {
			return nil, errors.Mark(errors.Wrapf(err, "removing %s", snap.OriginalPath), errors.ErrWriteFailed)
		}
		return snap, nil
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.rootDir, id, snap.FileName))
	if err != nil {
		return nil, errors.Wrapf(err, "reading backup copy %s", id)
	}

	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != snap.SHA256Hash {
		return nil, errors.Mark(errors.Wrapf(ErrBackupCorrupted, "snapshot %s hash mismatch", id), errors.ErrCorrupt)
	}

	mode := snap.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := fileutil.AtomicWriteFile(snap.OriginalPath, data, mode); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "restoring %s", snap.OriginalPath), errors.ErrWriteFailed)
	}

	return snap, nil
}

// List returns all snapshots, newest first.
// Returns ErrNoBackupsFound if there are none.
func (m *Manager) List() ([]Snapshot, error) {
	ids, err := m.ids()
	if err != nil {
		return nil, err
	}

	snaps := make([]Snapshot, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		snap, err := m.Get(ids[i])
		if err != nil {
			// Skip directories without valid metadata
			continue
		}
		snaps = append(snaps, *snap)
	}

	if len(snaps) == 0 {
		return nil, ErrNoBackupsFound
	}
	return snaps, nil
}

// Latest returns the newest snapshot.
func (m *Manager) Latest() (*Snapshot, error) {
	snaps, err := m.List()
	if err != nil {
		return nil, err
	}
	return &snaps[0], nil
}

// Get returns the metadata for a specific snapshot.
func (m *Manager) Get(id string) (*Snapshot, error) {
	if id == "" {
		return nil, errors.New("backup ID is required")
	}
	if filepath.Base(id) != id {
		return nil, errors.Newf("invalid backup ID %q", id)
	}

	metaPath := filepath.Join(m.rootDir, id, metaFileName)
	data, err := fileutil.ReadFileWithLimit(metaPath)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
		}
		return nil, errors.Wrap(err, "reading snapshot metadata")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.NewCorruptError(metaPath, err)
	}

	snap.ID = id
	return &snap, nil
}

// Prune removes the oldest snapshots, keeping the newest keep.
// Returns the number of snapshots removed.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("keep must be non-negative")
	}

	ids, err := m.ids()
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := 0; i < len(ids)-keep; i++ {
		if err := os.RemoveAll(filepath.Join(m.rootDir, ids[i])); err != nil {
			return removed, errors.Wrapf(err, "removing backup %s", ids[i])
		}
		removed++
	}

	return removed, nil
}
