package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/mcpfed/internal/errors"
)

// SnapshotVersion is the metadata format version for forward compatibility.
const SnapshotVersion = 1

// metaFileName is the metadata file stored in each snapshot directory.
const metaFileName = "snapshot.json"

// idLayout is a UTC timestamp that sorts lexically in creation order.
const idLayout = "20060102T150405.000000000"

// DefaultRetentionCount is the default number of snapshots kept by Prune.
const DefaultRetentionCount = 10

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates the backup directory holds no snapshots.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a snapshot's copy no longer matches the
	// hash recorded when it was taken.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Snapshot describes one backup of a single file. It is stored as
// snapshot.json next to the copied bytes and never modified afterwards.
type Snapshot struct {
	// Version is the metadata format version.
	Version int `json:"version"`

	// ID is the snapshot identifier (the directory name). Populated when
	// loading from disk, not stored in JSON.
	ID string `json:"-"`

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`

	// Reason names the operation that requested the snapshot (install, uninstall, restore).
	Reason string `json:"reason,omitempty"`

	// OriginalPath is the absolute path of the file that was copied.
	OriginalPath string `json:"original_path"`

	// FileName is the base name of the copy inside the snapshot directory.
	FileName string `json:"file_name"`

	// Existed is false when the source was absent at snapshot time. Restoring
	// such a snapshot removes the file.
	Existed bool `json:"existed"`

	// SHA256Hash is the hex-encoded SHA256 of the copied bytes.
	SHA256Hash string `json:"sha256_hash,omitempty"`

	// Size is the number of bytes copied.
	Size int64 `json:"size"`

	// Mode is the source file's permission bits.
	Mode fs.FileMode `json:"mode,omitempty"`

	// ToolVersion is the version of mcpfed that took the snapshot.
	ToolVersion string `json:"tool_version"`
}
