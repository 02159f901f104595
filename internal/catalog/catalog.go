// Package catalog defines the fixed set of components mcpfed installs into
// the host application's configuration.
package catalog

import (
	"maps"
	"slices"

	"github.com/thoreinstein/mcpfed/internal/nameset"
)

// Kind describes how a component's runtime is obtained.
type Kind string

const (
	// KindRemotePackage components are fetched on demand by a package runner (npx).
	KindRemotePackage Kind = "remote-package"

	// KindBundledLocal components run from a checkout under the servers directory.
	KindBundledLocal Kind = "bundled-local"
)

// LaunchSpec is the value written under a component's name in the host
// configuration document.
type LaunchSpec struct {
	Command string            `json:"command" yaml:"command" toml:"command"`
	Args    []string          `json:"args" yaml:"args" toml:"args"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`

	// Cwd is the working directory for bundled-local components.
	Cwd string `json:"cwd,omitempty" yaml:"cwd,omitempty" toml:"cwd,omitempty"`
}

// Entry is one installable component. Entries are immutable once the
// catalog is built.
type Entry struct {
	Name        string     `json:"name" yaml:"name" toml:"name"`
	Kind        Kind       `json:"kind" yaml:"kind" toml:"kind"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Launch      LaunchSpec `json:"launch" yaml:"launch" toml:"launch"`
}

// Catalog is an ordered, name-unique collection of entries.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New builds a catalog from entries. Later entries with a duplicate name are ignored.
func New(entries ...Entry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := c.index[e.Name]; dup || e.Name == "" {
			continue
		}
		c.index[e.Name] = len(c.entries)
		c.entries = append(c.entries, e.clone())
	}
	return c
}

// Entries returns copies of the catalog entries in definition order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Lookup returns the entry named name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i].clone(), true
}

// Has reports whether name is a catalog entry.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Names returns the set of entry names.
func (c *Catalog) Names() nameset.Set {
	s := make(nameset.Set, len(c.entries))
	for _, e := range c.entries {
		s.Add(e.Name)
	}
	return s
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Without returns a catalog lacking the named entries.
func (c *Catalog) Without(names ...string) *Catalog {
	if len(names) == 0 {
		return c
	}
	drop := nameset.New(names...)
	kept := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if !drop.Has(e.Name) {
			kept = append(kept, e)
		}
	}
	return New(kept...)
}

func (e Entry) clone() Entry {
	e.Launch.Args = slices.Clone(e.Launch.Args)
	e.Launch.Env = maps.Clone(e.Launch.Env)
	return e
}
