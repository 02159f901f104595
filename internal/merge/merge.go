// Package merge decides what an install or uninstall run changes.
//
// Planning is pure: it reads the names present in the host document, the
// catalog, and the manifest record, and returns a plan. It performs no I/O
// and cannot fail.
//
// Callers also pass the intact set: present names whose document value still
// equals the catalog's launch spec. Only intact names left pending by an
// interrupted run are recovered as ours.
package merge

import (
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/manifest"
	"github.com/thoreinstein/mcpfed/internal/nameset"
)

// InstallPlan is the outcome of planning an install.
type InstallPlan struct {
	// ToAdd holds catalog entries absent from the document, in catalog order.
	ToAdd []catalog.Entry

	// ToSkip holds catalog names already configured in the document.
	ToSkip nameset.Set

	// NewAlreadyExisted holds skipped names the prior record did not track
	// at all. They are classified as pre-existing from now on.
	NewAlreadyExisted nameset.Set

	// InstalledByUs and AlreadyExisted are the record's sets after the run.
	InstalledByUs  nameset.Set
	AlreadyExisted nameset.Set
}

// AddNames returns the names of ToAdd.
func (p InstallPlan) AddNames() nameset.Set {
	out := nameset.New()
	for _, e := range p.ToAdd {
		out.Add(e.Name)
	}
	return out
}

// PlanInstall computes the install plan. prior may be nil when nothing was
// ever installed.
//
// A name already recorded as pre-existing stays pre-existing even when it
// has since disappeared from the document and is added again.
//
// Names left pending by an interrupted run that are now in the document with
// the catalog's value are recovered as ours. A pending name holding any other
// value is classified as pre-existing.
func PlanInstall(present, intact nameset.Set, cat *catalog.Catalog, prior *manifest.Record) InstallPlan {
	prevOurs, prevExisting := priorSets(prior, intact)

	plan := InstallPlan{
		ToSkip:            nameset.New(),
		NewAlreadyExisted: nameset.New(),
	}

	for _, e := range cat.Entries() {
		if !present.Has(e.Name) {
			plan.ToAdd = append(plan.ToAdd, e)
			continue
		}
		plan.ToSkip.Add(e.Name)
		if !prevOurs.Has(e.Name) && !prevExisting.Has(e.Name) {
			plan.NewAlreadyExisted.Add(e.Name)
		}
	}

	plan.InstalledByUs = prevOurs.Union(plan.AddNames().Minus(prevExisting))
	plan.AlreadyExisted = prevExisting.Union(plan.NewAlreadyExisted)
	return plan
}

// Changes reports whether applying the plan would modify the document or
// the manifest record.
func (p InstallPlan) Changes(prior *manifest.Record) bool {
	if len(p.ToAdd) > 0 {
		return true
	}
	if prior == nil {
		return p.AlreadyExisted.Len() > 0
	}
	if prior.Pending.Len() > 0 {
		return true
	}
	return !p.InstalledByUs.Equal(prior.InstalledByUs) || !p.AlreadyExisted.Equal(prior.AlreadyExisted)
}

// UninstallOptions selects the uninstall variant.
type UninstallOptions struct {
	// Force removes every catalog name found in the document regardless of
	// provenance. It is destructive and must be requested explicitly.
	Force bool

	// Names limits the run to these names. Nil means no limit.
	Names nameset.Set
}

// UninstallPlan is the outcome of planning an uninstall.
type UninstallPlan struct {
	// ToRemove holds names deleted from the document.
	ToRemove nameset.Set

	// Missing holds tracked names in scope that are no longer in the
	// document. They are dropped from the record without touching the
	// document.
	Missing nameset.Set

	// Preserved holds pre-existing names in the document that are left alone.
	Preserved nameset.Set

	// InstalledByUs and AlreadyExisted are the record's sets after the run.
	InstalledByUs  nameset.Set
	AlreadyExisted nameset.Set

	// ClearManifest is set when nothing installed by this tool remains
	// tracked, so the manifest is deleted instead of rewritten.
	ClearManifest bool
}

// PlanUninstall computes the uninstall plan. rec may be nil; without Force
// a nil record yields an empty plan.
func PlanUninstall(present, intact nameset.Set, cat *catalog.Catalog, rec *manifest.Record, opts UninstallOptions) UninstallPlan {
	prevOurs, prevExisting := priorSets(rec, intact)

	var scope nameset.Set
	if opts.Force {
		scope = cat.Names()
	} else {
		scope = prevOurs.Clone()
	}
	if opts.Names != nil {
		scope = scope.Intersect(opts.Names)
	}

	plan := UninstallPlan{
		ToRemove:      scope.Intersect(present),
		Missing:       scope.Intersect(prevOurs.Union(prevExisting)).Minus(present),
		InstalledByUs: prevOurs.Minus(scope),
	}

	if opts.Force {
		plan.AlreadyExisted = prevExisting.Minus(scope)
		plan.Preserved = nameset.New()
	} else {
		plan.AlreadyExisted = prevExisting.Clone()
		plan.Preserved = prevExisting.Intersect(present)
		if opts.Names != nil {
			plan.Preserved = plan.Preserved.Intersect(opts.Names)
		}
	}

	plan.ClearManifest = rec != nil && plan.InstalledByUs.Len() == 0
	return plan
}

// Changes reports whether applying the plan would modify the document or
// the manifest record.
func (p UninstallPlan) Changes(rec *manifest.Record) bool {
	if p.ToRemove.Len() > 0 {
		return true
	}
	if rec == nil {
		return false
	}
	if p.ClearManifest || rec.Pending.Len() > 0 {
		return true
	}
	return !p.InstalledByUs.Equal(rec.InstalledByUs) || !p.AlreadyExisted.Equal(rec.AlreadyExisted)
}

// priorSets returns the record's sets with pending names that reached the
// document intact folded into ours.
func priorSets(rec *manifest.Record, intact nameset.Set) (ours, existing nameset.Set) {
	if rec == nil {
		return nameset.New(), nameset.New()
	}
	existing = rec.AlreadyExisted.Clone()
	recovered := rec.Pending.Intersect(intact).Minus(existing)
	return rec.InstalledByUs.Union(recovered), existing
}
