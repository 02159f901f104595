package doctor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/configstore"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/logging"
	"github.com/thoreinstein/mcpfed/internal/manifest"
	"github.com/thoreinstein/mcpfed/internal/nameset"
)

// State is the on-disk state every state check inspects. It is loaded once
// per doctor run so all checks see the same snapshot.
type State struct {
	ConfigPath string
	Doc        *configstore.Document
	DocExisted bool
	DocErr     error

	ManifestPath string
	Record       *manifest.Record
	RecordErr    error

	Catalog *catalog.Catalog
}

// LoadState reads the host document and the manifest. Read failures are
// kept on the State for the checks to report rather than returned.
func LoadState(cfg *configstore.Store, mf *manifest.Store, cat *catalog.Catalog) *State {
	s := &State{
		ConfigPath:   cfg.Path(),
		ManifestPath: mf.Path(),
		Catalog:      cat,
	}
	s.Doc, s.DocExisted, s.DocErr = cfg.ReadOrEmpty()
	s.Record, s.RecordErr = mf.Load()
	return s
}

func (s *State) usable() bool {
	return s.DocErr == nil && s.RecordErr == nil
}

// HostConfigCheck reports whether the host document parses.
type HostConfigCheck struct {
	state *State
}

var _ Check = (*HostConfigCheck)(nil)

// NewHostConfigCheck creates a HostConfigCheck.
func NewHostConfigCheck(s *State) *HostConfigCheck {
	return &HostConfigCheck{state: s}
}

func (c *HostConfigCheck) Name() string     { return "host-config" }
func (c *HostConfigCheck) Category() string { return "state" }

// Run executes the check.
func (c *HostConfigCheck) Run() *CheckResult {
	s := c.state
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": s.ConfigPath},
	}

	switch {
	case s.DocErr != nil:
		result.Status = SeverityError
		result.Message = "host config cannot be read: " + s.DocErr.Error()
		if errors.Is(s.DocErr, errors.ErrCorrupt) {
			result.FixHint = "fix the JSON by hand or run: mcpfed backup restore"
		}
	case !s.DocExisted:
		result.Status = SeverityInfo
		result.Message = "host config does not exist yet; install will create it"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("host config parses (%d servers)", len(s.Doc.Servers))
		result.Details["servers"] = len(s.Doc.Servers)
	}
	return result
}

// ManifestCheck reports whether the manifest parses and whether an install
// was interrupted.
type ManifestCheck struct {
	state *State
}

var _ Check = (*ManifestCheck)(nil)

// NewManifestCheck creates a ManifestCheck.
func NewManifestCheck(s *State) *ManifestCheck {
	return &ManifestCheck{state: s}
}

func (c *ManifestCheck) Name() string     { return "manifest" }
func (c *ManifestCheck) Category() string { return "state" }

// Run executes the check.
func (c *ManifestCheck) Run() *CheckResult {
	s := c.state
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": s.ManifestPath},
	}

	switch {
	case s.RecordErr != nil:
		result.Status = SeverityError
		result.Message = "manifest cannot be read: " + s.RecordErr.Error()
		result.FixHint = "move the file aside; entries this tool added will then be treated as pre-existing"
	case s.Record == nil:
		result.Status = SeverityInfo
		result.Message = "no manifest; nothing has been installed"
	case s.Record.Pending.Len() > 0:
		result.Status = SeverityWarning
		result.Message = "a previous install was interrupted"
		result.Details["pending"] = s.Record.Pending.Sorted()
		result.FixHint = "run: mcpfed install"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("manifest tracks %d installed and %d pre-existing",
			s.Record.InstalledByUs.Len(), s.Record.AlreadyExisted.Len())
		result.Details["installed_by_us"] = s.Record.InstalledByUs.Sorted()
		result.Details["already_existed"] = s.Record.AlreadyExisted.Sorted()
	}
	return result
}

// ConsistencyCheck compares the manifest against the host document and the
// catalog.
type ConsistencyCheck struct {
	state *State
}

var _ Check = (*ConsistencyCheck)(nil)

// NewConsistencyCheck creates a ConsistencyCheck.
func NewConsistencyCheck(s *State) *ConsistencyCheck {
	return &ConsistencyCheck{state: s}
}

func (c *ConsistencyCheck) Name() string     { return "consistency" }
func (c *ConsistencyCheck) Category() string { return "state" }

// Run executes the check. Severity escalates with the worst finding:
//   - installedByUs and alreadyExisted overlap: error
//   - a tracked name is missing from the document: warning
//   - a catalog name is present but untracked: info
//   - an installed entry differs from the current catalog definition: info
func (c *ConsistencyCheck) Run() *CheckResult {
	s := c.state
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Details:  map[string]any{},
	}

	if !s.usable() {
		result.Status = SeverityInfo
		result.Message = "skipped; host config or manifest unreadable"
		return result
	}

	present := s.Doc.Names()
	var ours, existing nameset.Set
	if s.Record != nil {
		ours, existing = s.Record.InstalledByUs, s.Record.AlreadyExisted
	}

	var findings []string
	raise := func(sev Severity, key string, names nameset.Set, msg string) {
		if names.Len() == 0 {
			return
		}
		if sev > result.Status {
			result.Status = sev
		}
		result.Details[key] = names.Sorted()
		findings = append(findings, fmt.Sprintf("%d %s", names.Len(), msg))
	}

	raise(SeverityError, "overlap", ours.Intersect(existing), "name(s) recorded as both installed and pre-existing")
	raise(SeverityWarning, "missing", ours.Union(existing).Minus(present), "tracked name(s) missing from host config")
	raise(SeverityInfo, "untracked", s.Catalog.Names().Intersect(present).Minus(ours).Minus(existing), "catalog name(s) present but untracked")
	raise(SeverityInfo, "drifted", c.drifted(ours.Intersect(present)), "installed entr(ies) differ from the current catalog")

	if len(findings) == 0 {
		result.Message = "manifest agrees with host config"
		return result
	}

	result.Message = strings.Join(findings, "; ")
	switch result.Status {
	case SeverityError:
		result.FixHint = "run: mcpfed uninstall --force, then mcpfed install"
	case SeverityWarning:
		result.FixHint = "run: mcpfed install to restore missing entries, or mcpfed uninstall to drop them"
	}
	return result
}

// drifted returns the names whose document value no longer matches what the
// catalog would install today. Install never overwrites them.
func (c *ConsistencyCheck) drifted(names nameset.Set) nameset.Set {
	out := nameset.New()
	for name := range names {
		entry, ok := c.state.Catalog.Lookup(name)
		if !ok {
			continue
		}
		want, err := configstore.EncodeLaunchSpec(entry.Launch)
		if err != nil {
			continue
		}
		if !jsonEqual(c.state.Doc.Servers[name], want) {
			out.Add(name)
		}
	}
	return out
}

// PlaceholderCheck warns about installed entries whose env still holds
// catalog placeholders instead of real credentials.
type PlaceholderCheck struct {
	state *State
}

var _ Check = (*PlaceholderCheck)(nil)

// NewPlaceholderCheck creates a PlaceholderCheck.
func NewPlaceholderCheck(s *State) *PlaceholderCheck {
	return &PlaceholderCheck{state: s}
}

func (c *PlaceholderCheck) Name() string     { return "placeholders" }
func (c *PlaceholderCheck) Category() string { return "state" }

// Run executes the check.
func (c *PlaceholderCheck) Run() *CheckResult {
	s := c.state
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "no placeholder credentials",
	}
	if s.DocErr != nil {
		result.Status = SeverityInfo
		result.Message = "skipped; host config unreadable"
		return result
	}

	unfilled := map[string][]string{}
	for name := range s.Catalog.Names().Intersect(s.Doc.Names()) {
		var spec catalog.LaunchSpec
		if err := json.Unmarshal(s.Doc.Servers[name], &spec); err != nil {
			continue
		}
		for _, key := range slices.Sorted(maps.Keys(spec.Env)) {
			if logging.IsPlaceholder(spec.Env[key]) {
				unfilled[name] = append(unfilled[name], key)
			}
		}
	}

	if len(unfilled) == 0 {
		return result
	}

	result.Status = SeverityWarning
	result.Message = fmt.Sprintf("%d server(s) still use placeholder credentials", len(unfilled))
	result.Details = map[string]any{"servers": unfilled}
	result.FixHint = "edit " + s.ConfigPath + " and replace the " + logging.PlaceholderPrefix + "... values"
	return result
}

// BackupCheck reports on the backup directory.
type BackupCheck struct {
	manager *backup.Manager
}

var _ Check = (*BackupCheck)(nil)

// NewBackupCheck creates a BackupCheck.
func NewBackupCheck(m *backup.Manager) *BackupCheck {
	return &BackupCheck{manager: m}
}

func (c *BackupCheck) Name() string     { return "backups" }
func (c *BackupCheck) Category() string { return "filesystem" }

// Run executes the check.
func (c *BackupCheck) Run() *CheckResult {
	dir := c.manager.Dir()
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Details:  map[string]any{"path": dir},
	}

	// Walk up to the nearest existing ancestor; that is where the first
	// snapshot will create directories.
	probe := dir
	for {
		if _, err := os.Stat(probe); err == nil {
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}
	if ok, err := isDirectoryWritable(probe); err != nil || !ok {
		result.Status = SeverityError
		result.Message = "backup directory is not writable; install and uninstall will fail"
		result.FixHint = "chmod u+w " + probe
		return result
	}

	snaps, err := c.manager.List()
	switch {
	case errors.Is(err, backup.ErrNoBackupsFound):
		result.Message = "backup directory is writable; no snapshots yet"
	case err != nil:
		result.Status = SeverityWarning
		result.Message = "cannot list snapshots: " + err.Error()
	default:
		result.Message = fmt.Sprintf("%d snapshot(s), newest %s", len(snaps), snaps[0].ID)
		result.Details["count"] = len(snaps)
		result.Details["newest"] = snaps[0].ID
	}
	return result
}

func jsonEqual(a, b []byte) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
