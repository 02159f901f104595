package cli

import (
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/manifest"
	"github.com/thoreinstein/mcpfed/internal/nameset"
)

// Provenance describes who put a catalog entry into the host document.
type Provenance string

const (
	// ProvenanceOurs marks entries mcpfed added.
	ProvenanceOurs Provenance = "ours"

	// ProvenancePreExisting marks entries found before mcpfed would have added them.
	ProvenancePreExisting Provenance = "pre-existing"

	// ProvenanceUntracked marks entries present but unknown to the manifest.
	ProvenanceUntracked Provenance = "untracked"

	// ProvenanceMissing marks tracked entries no longer in the document.
	ProvenanceMissing Provenance = "missing"

	// ProvenanceAbsent marks entries neither present nor tracked.
	ProvenanceAbsent Provenance = "absent"
)

// ComponentStatus is one catalog entry's state on this machine.
type ComponentStatus struct {
	Name       string       `json:"name" yaml:"name" toml:"name"`
	Kind       catalog.Kind `json:"kind" yaml:"kind" toml:"kind"`
	Provenance Provenance   `json:"provenance" yaml:"provenance" toml:"provenance"`
	Present    bool         `json:"present" yaml:"present" toml:"present"`
}

// Statuses classifies every catalog entry against the names present in the
// host document and the manifest record, which may be nil.
func Statuses(cat *catalog.Catalog, present nameset.Set, rec *manifest.Record) []ComponentStatus {
	var ours, existing nameset.Set
	if rec != nil {
		ours = rec.InstalledByUs.Union(rec.Pending)
		existing = rec.AlreadyExisted
	}

	out := make([]ComponentStatus, 0, cat.Len())
	for _, e := range cat.Entries() {
		s := ComponentStatus{Name: e.Name, Kind: e.Kind, Present: present.Has(e.Name)}
		tracked := ours.Has(e.Name) || existing.Has(e.Name)
		switch {
		case s.Present && ours.Has(e.Name):
			s.Provenance = ProvenanceOurs
		case s.Present && existing.Has(e.Name):
			s.Provenance = ProvenancePreExisting
		case s.Present:
			s.Provenance = ProvenanceUntracked
		case tracked:
			s.Provenance = ProvenanceMissing
		default:
			s.Provenance = ProvenanceAbsent
		}
		out = append(out, s)
	}
	return out
}
