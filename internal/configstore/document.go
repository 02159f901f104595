// Package configstore reads and writes the host application's shared JSON
// configuration document.
package configstore

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"reflect"
	"slices"

	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/nameset"
)

// ServersKey is the top-level field holding the component name to launch
// spec mapping.
const ServersKey = "mcpServers"

// Document is the host configuration. Server values and all other top-level
// fields are held as raw JSON so entries this tool does not own keep their
// values. Keys are written back in the order they were read; names added
// later follow in insertion order.
type Document struct {
	// Servers maps component names to their launch specs.
	Servers map[string]json.RawMessage

	// fields stores every top-level field except ServersKey.
	fields map[string]json.RawMessage

	// order and serverOrder record key order as read.
	order       []string
	serverOrder []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Servers: make(map[string]json.RawMessage)}
}

// Names returns the set of configured component names.
func (d *Document) Names() nameset.Set {
	s := make(nameset.Set, len(d.Servers))
	for name := range d.Servers {
		s.Add(name)
	}
	return s
}

// Has reports whether name is configured.
func (d *Document) Has(name string) bool {
	_, ok := d.Servers[name]
	return ok
}

// Field returns a raw top-level field other than ServersKey.
func (d *Document) Field(key string) (json.RawMessage, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	out := &Document{
		Servers:     make(map[string]json.RawMessage, len(d.Servers)),
		fields:      maps.Clone(d.fields),
		order:       slices.Clone(d.order),
		serverOrder: slices.Clone(d.serverOrder),
	}
	for k, v := range d.Servers {
		out.Servers[k] = bytes.Clone(v)
	}
	return out
}

// WithAdded returns a copy of d with entries inserted. Names already present
// keep their existing value.
func (d *Document) WithAdded(entries []catalog.Entry) (*Document, error) {
	out := d.Clone()
	for _, e := range entries {
		if out.Has(e.Name) {
			continue
		}
		raw, err := EncodeLaunchSpec(e.Launch)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s", e.Name)
		}
		out.Servers[e.Name] = raw
		out.serverOrder = append(out.serverOrder, e.Name)
	}
	return out, nil
}

// Intact returns the catalog names whose document value equals the value
// [Document.WithAdded] would write for them. Formatting differences do not
// count; any other edit does.
func (d *Document) Intact(cat *catalog.Catalog) nameset.Set {
	out := nameset.New()
	for _, e := range cat.Entries() {
		raw, ok := d.Servers[e.Name]
		if !ok {
			continue
		}
		want, err := EncodeLaunchSpec(e.Launch)
		if err != nil {
			continue
		}
		if sameJSON(raw, want) {
			out.Add(e.Name)
		}
	}
	return out
}

func sameJSON(a, b json.RawMessage) bool {
	var av, bv any
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

// WithRemoved returns a copy of d without the given names. Every other key
// is copied unchanged.
func (d *Document) WithRemoved(names nameset.Set) *Document {
	out := d.Clone()
	for name := range names {
		delete(out.Servers, name)
	}
	return out
}

// EncodeLaunchSpec renders spec as the JSON value stored in the document.
func EncodeLaunchSpec(spec catalog.LaunchSpec) (json.RawMessage, error) {
	if spec.Args == nil {
		spec.Args = []string{}
	}
	return marshalRaw(spec)
}

// MarshalJSON implements json.Marshaler, emitting preserved fields alongside
// ServersKey in their original order.
func (d *Document) MarshalJSON() ([]byte, error) {
	servers := d.Servers
	if servers == nil {
		servers = map[string]json.RawMessage{}
	}
	data, err := marshalObject(d.serverOrder, servers)
	if err != nil {
		return nil, err
	}

	result := make(map[string]json.RawMessage, len(d.fields)+1)
	maps.Copy(result, d.fields)
	result[ServersKey] = data

	return marshalObject(d.order, result)
}

// marshalObject encodes values as a JSON object. Keys listed in order come
// first; the rest follow sorted.
func marshalObject(order []string, values map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, k := range order {
		if _, ok := values[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(values)-len(keys))
	for k := range values {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	keys = append(keys, rest...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalRaw(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v := values[k]
		if len(v) == 0 {
			v = json.RawMessage("null")
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw encodes v without HTML escaping so raw values keep their bytes.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler. The top level must be an object
// and ServersKey, when present and not null, must be an object.
func (d *Document) UnmarshalJSON(data []byte) error {
	order, raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.New("top-level value is null, want an object")
	}

	d.Servers = make(map[string]json.RawMessage)
	d.serverOrder = nil
	if serversData, ok := raw[ServersKey]; ok {
		names, servers, err := decodeObject(serversData)
		if err != nil {
			return errors.Wrapf(err, "field %q", ServersKey)
		}
		if servers != nil {
			d.Servers = servers
			d.serverOrder = names
		}
		delete(raw, ServersKey)
	}

	d.order = order
	d.fields = nil
	if len(raw) > 0 {
		d.fields = raw
	}

	return nil
}

// decodeObject reads a JSON object keeping its key order. A null value yields
// nil values and no error. Duplicate keys keep their first position and last
// value.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if tok == nil {
		return nil, nil, expectEOF(dec)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.Newf("got %v, want an object", tok)
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.Newf("unexpected token %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, errors.Wrapf(err, "key %q", key)
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}

	return keys, values, expectEOF(dec)
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}
