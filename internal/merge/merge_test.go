package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/manifest"
	"github.com/thoreinstein/mcpfed/internal/nameset"
)

func testCatalog(names ...string) *catalog.Catalog {
	entries := make([]catalog.Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, catalog.Entry{
			Name:   n,
			Kind:   catalog.KindRemotePackage,
			Launch: catalog.LaunchSpec{Command: "npx", Args: []string{"-y", n}},
		})
	}
	return catalog.New(entries...)
}

func record(ours, existing []string) *manifest.Record {
	rec := manifest.NewRecord(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	rec.InstalledByUs = nameset.New(ours...)
	rec.AlreadyExisted = nameset.New(existing...)
	return rec
}

func entryNames(entries []catalog.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestPlanInstall(t *testing.T) {
	tests := []struct {
		name         string
		present      []string
		catalog      []string
		prior        *manifest.Record
		wantAdd      []string
		wantSkip     []string
		wantNew      []string
		wantOurs     []string
		wantExisting []string
		wantChanges  bool
	}{
		{
			name:         "empty document",
			catalog:      []string{"a", "b", "c"},
			wantAdd:      []string{"a", "b", "c"},
			wantSkip:     []string{},
			wantNew:      []string{},
			wantOurs:     []string{"a", "b", "c"},
			wantExisting: []string{},
			wantChanges:  true,
		},
		{
			name:         "pre-existing entry is skipped and classified",
			present:      []string{"a"},
			catalog:      []string{"a", "b"},
			wantAdd:      []string{"b"},
			wantSkip:     []string{"a"},
			wantNew:      []string{"a"},
			wantOurs:     []string{"b"},
			wantExisting: []string{"a"},
			wantChanges:  true,
		},
		{
			name:         "unrelated keys are ignored",
			present:      []string{"custom", "other"},
			catalog:      []string{"a"},
			wantAdd:      []string{"a"},
			wantSkip:     []string{},
			wantNew:      []string{},
			wantOurs:     []string{"a"},
			wantExisting: []string{},
			wantChanges:  true,
		},
		{
			name:         "second run is a no-op",
			present:      []string{"a", "b"},
			catalog:      []string{"a", "b"},
			prior:        record([]string{"b"}, []string{"a"}),
			wantSkip:     []string{"a", "b"},
			wantNew:      []string{},
			wantOurs:     []string{"b"},
			wantExisting: []string{"a"},
			wantChanges:  false,
		},
		{
			name:         "our entry removed by user is added again",
			present:      []string{"a"},
			catalog:      []string{"a", "b"},
			prior:        record([]string{"b"}, []string{"a"}),
			wantAdd:      []string{"b"},
			wantSkip:     []string{"a"},
			wantNew:      []string{},
			wantOurs:     []string{"b"},
			wantExisting: []string{"a"},
			wantChanges:  true,
		},
		{
			name:         "pre-existing classification is sticky",
			present:      []string{"b"},
			catalog:      []string{"a", "b"},
			prior:        record([]string{"b"}, []string{"a"}),
			wantAdd:      []string{"a"},
			wantSkip:     []string{"b"},
			wantNew:      []string{},
			wantOurs:     []string{"b"},
			wantExisting: []string{"a"},
			wantChanges:  true,
		},
		{
			name:         "everything present without a manifest still records provenance",
			present:      []string{"a", "b"},
			catalog:      []string{"a", "b"},
			wantSkip:     []string{"a", "b"},
			wantNew:      []string{"a", "b"},
			wantOurs:     []string{},
			wantExisting: []string{"a", "b"},
			wantChanges:  true,
		},
		{
			name:         "names outside the catalog stay tracked",
			present:      []string{"a"},
			catalog:      []string{"a"},
			prior:        record([]string{"a", "retired"}, nil),
			wantSkip:     []string{"a"},
			wantNew:      []string{},
			wantOurs:     []string{"a", "retired"},
			wantExisting: []string{},
			wantChanges:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanInstall(nameset.New(tt.present...), nil, testCatalog(tt.catalog...), tt.prior)

			if tt.wantAdd == nil {
				assert.Empty(t, plan.ToAdd)
			} else {
				assert.Equal(t, tt.wantAdd, entryNames(plan.ToAdd))
			}
			assert.Equal(t, tt.wantSkip, plan.ToSkip.Sorted())
			assert.Equal(t, tt.wantNew, plan.NewAlreadyExisted.Sorted())
			assert.Equal(t, tt.wantOurs, plan.InstalledByUs.Sorted())
			assert.Equal(t, tt.wantExisting, plan.AlreadyExisted.Sorted())
			assert.Equal(t, tt.wantChanges, plan.Changes(tt.prior))
		})
	}
}

func TestPlanInstall_ManifestAccuracy(t *testing.T) {
	cat := testCatalog("a", "b", "c", "d")
	present := nameset.New("b", "d", "unrelated")

	plan := PlanInstall(present, nil, cat, nil)

	after := present.Union(plan.AddNames())
	catalogPresent := cat.Names().Intersect(after)

	assert.True(t, plan.InstalledByUs.Union(plan.AlreadyExisted).Equal(catalogPresent))
	assert.Zero(t, plan.InstalledByUs.Intersect(plan.AlreadyExisted).Len(), "sets must be disjoint")
}

func TestPlanInstall_DoesNotMutatePrior(t *testing.T) {
	prior := record([]string{"b"}, []string{"a"})
	snapshot := prior.Clone()

	PlanInstall(nameset.New(), nil, testCatalog("a", "b", "c"), prior)

	assert.True(t, prior.InstalledByUs.Equal(snapshot.InstalledByUs))
	assert.True(t, prior.AlreadyExisted.Equal(snapshot.AlreadyExisted))
}

func TestPlanUninstall(t *testing.T) {
	tests := []struct {
		name         string
		present      []string
		catalog      []string
		rec          *manifest.Record
		opts         UninstallOptions
		wantRemove   []string
		wantMissing  []string
		wantKept     []string
		wantOurs     []string
		wantExisting []string
		wantClear    bool
		wantChanges  bool
	}{
		{
			name:         "full uninstall clears manifest",
			present:      []string{"a", "b", "c"},
			catalog:      []string{"a", "b", "c"},
			rec:          record([]string{"a", "b", "c"}, nil),
			wantRemove:   []string{"a", "b", "c"},
			wantMissing:  []string{},
			wantKept:     []string{},
			wantOurs:     []string{},
			wantExisting: []string{},
			wantClear:    true,
			wantChanges:  true,
		},
		{
			name:         "pre-existing entries are never removed",
			present:      []string{"a", "b"},
			catalog:      []string{"a", "b"},
			rec:          record([]string{"b"}, []string{"a"}),
			wantRemove:   []string{"b"},
			wantMissing:  []string{},
			wantKept:     []string{"a"},
			wantOurs:     []string{},
			wantExisting: []string{"a"},
			wantClear:    true,
			wantChanges:  true,
		},
		{
			name:         "names already gone are dropped from the record",
			present:      []string{"a"},
			catalog:      []string{"a", "b"},
			rec:          record([]string{"a", "b"}, nil),
			wantRemove:   []string{"a"},
			wantMissing:  []string{"b"},
			wantKept:     []string{},
			wantOurs:     []string{},
			wantExisting: []string{},
			wantClear:    true,
			wantChanges:  true,
		},
		{
			name:         "selective uninstall rewrites manifest",
			present:      []string{"a", "b", "c"},
			catalog:      []string{"a", "b", "c"},
			rec:          record([]string{"a", "b", "c"}, nil),
			opts:         UninstallOptions{Names: nameset.New("b")},
			wantRemove:   []string{"b"},
			wantMissing:  []string{},
			wantKept:     []string{},
			wantOurs:     []string{"a", "c"},
			wantExisting: []string{},
			wantClear:    false,
			wantChanges:  true,
		},
		{
			name:         "selective uninstall ignores names that are not ours",
			present:      []string{"a", "b"},
			catalog:      []string{"a", "b"},
			rec:          record([]string{"b"}, []string{"a"}),
			opts:         UninstallOptions{Names: nameset.New("a")},
			wantRemove:   []string{},
			wantMissing:  []string{},
			wantKept:     []string{"a"},
			wantOurs:     []string{"b"},
			wantExisting: []string{"a"},
			wantClear:    false,
			wantChanges:  false,
		},
		{
			name:         "force removes every catalog name",
			present:      []string{"a", "b", "custom"},
			catalog:      []string{"a", "b", "c"},
			rec:          record([]string{"b"}, []string{"a"}),
			opts:         UninstallOptions{Force: true},
			wantRemove:   []string{"a", "b"},
			wantMissing:  []string{},
			wantKept:     []string{},
			wantOurs:     []string{},
			wantExisting: []string{},
			wantClear:    true,
			wantChanges:  true,
		},
		{
			name:         "force without manifest",
			present:      []string{"a", "custom"},
			catalog:      []string{"a", "b"},
			opts:         UninstallOptions{Force: true},
			wantRemove:   []string{"a"},
			wantMissing:  []string{},
			wantKept:     []string{},
			wantOurs:     []string{},
			wantExisting: []string{},
			wantClear:    false,
			wantChanges:  true,
		},
		{
			name:         "force reports only tracked names as missing",
			present:      []string{"a"},
			catalog:      []string{"a", "b", "c", "d"},
			rec:          record([]string{"a", "b"}, []string{"c"}),
			opts:         UninstallOptions{Force: true},
			wantRemove:   []string{"a"},
			wantMissing:  []string{"b", "c"},
			wantKept:     []string{},
			wantOurs:     []string{},
			wantExisting: []string{},
			wantClear:    true,
			wantChanges:  true,
		},
		{
			name:         "no manifest without force is empty",
			present:      []string{"a"},
			catalog:      []string{"a"},
			wantRemove:   []string{},
			wantMissing:  []string{},
			wantKept:     []string{},
			wantOurs:     []string{},
			wantExisting: []string{},
			wantClear:    false,
			wantChanges:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanUninstall(nameset.New(tt.present...), nil, testCatalog(tt.catalog...), tt.rec, tt.opts)

			assert.Equal(t, tt.wantRemove, plan.ToRemove.Sorted(), "ToRemove")
			assert.Equal(t, tt.wantMissing, plan.Missing.Sorted(), "Missing")
			assert.Equal(t, tt.wantKept, plan.Preserved.Sorted(), "Preserved")
			assert.Equal(t, tt.wantOurs, plan.InstalledByUs.Sorted(), "InstalledByUs")
			assert.Equal(t, tt.wantExisting, plan.AlreadyExisted.Sorted(), "AlreadyExisted")
			assert.Equal(t, tt.wantClear, plan.ClearManifest, "ClearManifest")
			assert.Equal(t, tt.wantChanges, plan.Changes(tt.rec), "Changes")
		})
	}
}

func TestPlanUninstall_NeverRemovesUnrelatedKeys(t *testing.T) {
	present := nameset.New("a", "b", "mine", "yours")
	cat := testCatalog("a", "b")

	for _, force := range []bool{false, true} {
		plan := PlanUninstall(present, nil, cat, record([]string{"a", "b"}, nil), UninstallOptions{Force: force})
		require.False(t, plan.ToRemove.Has("mine"))
		require.False(t, plan.ToRemove.Has("yours"))
	}
}

func TestPlanInstall_RecoversPendingNames(t *testing.T) {
	// An earlier run journaled b and c, wrote the document, then died
	// before the final manifest write.
	prior := record(nil, []string{"a"})
	prior.Pending = nameset.New("b", "c")

	present := nameset.New("a", "b", "c")
	plan := PlanInstall(present, present, testCatalog("a", "b", "c"), prior)

	assert.Empty(t, plan.ToAdd)
	assert.Empty(t, plan.NewAlreadyExisted.Sorted(), "journaled names must not become pre-existing")
	assert.Equal(t, []string{"b", "c"}, plan.InstalledByUs.Sorted())
	assert.Equal(t, []string{"a"}, plan.AlreadyExisted.Sorted())
	assert.True(t, plan.Changes(prior), "pending journal must be cleared")
}

func TestPlanInstall_PendingNameNeverWritten(t *testing.T) {
	// The run died before the document write; b is still absent.
	prior := record(nil, nil)
	prior.Pending = nameset.New("b")

	plan := PlanInstall(nameset.New(), nameset.New(), testCatalog("b"), prior)

	assert.Equal(t, []string{"b"}, entryNames(plan.ToAdd))
	assert.Equal(t, []string{"b"}, plan.InstalledByUs.Sorted())
}

func TestPlanUninstall_RecoversPendingNames(t *testing.T) {
	rec := record([]string{"a"}, nil)
	rec.Pending = nameset.New("b")

	present := nameset.New("a", "b")
	plan := PlanUninstall(present, present, testCatalog("a", "b"), rec, UninstallOptions{})

	assert.Equal(t, []string{"a", "b"}, plan.ToRemove.Sorted())
	assert.True(t, plan.ClearManifest)
}

func TestPlanInstall_PendingNameChangedByUser(t *testing.T) {
	// A failed run left a and b pending. The user then configured a by hand
	// with a different value, so only b still matches the catalog.
	prior := record(nil, nil)
	prior.Pending = nameset.New("a", "b")

	plan := PlanInstall(nameset.New("a", "b"), nameset.New("b"), testCatalog("a", "b"), prior)

	assert.Empty(t, plan.ToAdd)
	assert.Equal(t, []string{"a"}, plan.NewAlreadyExisted.Sorted())
	assert.Equal(t, []string{"b"}, plan.InstalledByUs.Sorted())
	assert.Equal(t, []string{"a"}, plan.AlreadyExisted.Sorted())
}

func TestPlanUninstall_PendingNameChangedByUser(t *testing.T) {
	rec := record([]string{"b"}, nil)
	rec.Pending = nameset.New("a")

	plan := PlanUninstall(nameset.New("a", "b"), nameset.New("b"), testCatalog("a", "b"), rec, UninstallOptions{})

	assert.Equal(t, []string{"b"}, plan.ToRemove.Sorted())
	assert.False(t, plan.ToRemove.Has("a"))
}
