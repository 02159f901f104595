// Package backup takes and restores point-in-time snapshots of single files.
//
// Every mutation of the host configuration is preceded by a snapshot so a
// user can always return to the bytes that existed before mcpfed ran.
//
// # Layout
//
// Each snapshot is a directory named by a sortable UTC timestamp:
//
//	<DataDir>/backups/
//	└── 20260123T100712.123456789/
//	    ├── snapshot.json
//	    └── claude_desktop_config.json
//
// IDs strictly increase. When two snapshots would share a timestamp, the
// later one is moved forward by a nanosecond until its directory name is free.
//
// # Absent Files
//
// Snapshotting a path that does not exist succeeds and records
// Existed=false. Restoring that snapshot removes the file again.
//
// # Integrity Verification
//
// The SHA256 of the copied bytes is recorded in snapshot.json. [Manager.Restore]
// refuses to write a copy whose hash no longer matches and returns
// [ErrBackupCorrupted].
//
// # Retention Management
//
//	removed, err := mgr.Prune(10) // keep the 10 newest snapshots
package backup
