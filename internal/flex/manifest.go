package flex

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// Schema names the manifest fields the pipeline owns. Everything else in the
// document is carried through untouched.
type Schema struct {
	// Pins are [dependencies] entries that track the upstream revision.
	// They always move together.
	Pins []string
	// MetadataKey is the [package.metadata] key holding the derived label.
	MetadataKey string
	// Transitive are [dependencies] entries whose version follows the
	// upstream lock file.
	Transitive []string
}

// GitDependency is a pinned git dependency entry.
type GitDependency struct {
	Git     string
	Rev     string
	Version string

	rest map[string]any
}

// VersionDependency is a dependency whose version is synced from a lock.
type VersionDependency struct {
	Version string

	// table is false for the `name = "1.0"` shorthand.
	table bool
	rest  map[string]any
}

// Manifest is a downstream Cargo manifest split into the fields the pipeline
// owns and the opaque remainder.
//
// Only the TOML data survives a parse and encode cycle. Comments, blank lines
// and the original key order are dropped, so a rewritten manifest comes back
// with keys in encoder order.
type Manifest struct {
	Pins       map[string]*GitDependency
	Transitive map[string]*VersionDependency
	Label      string

	schema Schema
	rest   map[string]any
}

// ParseManifest decodes data and extracts the fields named by schema.
// A missing or wrongly typed owned field is ErrManifestFormat.
func ParseManifest(data []byte, schema Schema) (*Manifest, error) {
	doc := map[string]any{}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestFormat, err)
	}

	m := &Manifest{
		Pins:       map[string]*GitDependency{},
		Transitive: map[string]*VersionDependency{},
		schema:     schema,
		rest:       doc,
	}

	if len(schema.Pins) > 0 || len(schema.Transitive) > 0 {
		deps, err := subTable(doc, "dependencies", "")
		if err != nil {
			return nil, err
		}
		for _, name := range schema.Pins {
			dep, err := takeGitDependency(deps, name)
			if err != nil {
				return nil, err
			}
			m.Pins[name] = dep
		}
		for _, name := range schema.Transitive {
			dep, err := takeVersionDependency(deps, name)
			if err != nil {
				return nil, err
			}
			m.Transitive[name] = dep
		}
	}

	if schema.MetadataKey != "" {
		pkg, err := subTable(doc, "package", "")
		if err != nil {
			return nil, err
		}
		meta, err := subTable(pkg, "metadata", "package")
		if err != nil {
			return nil, err
		}
		label, ok, err := takeString(meta, schema.MetadataKey, "package.metadata")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: package.metadata.%s is missing", ErrManifestFormat, schema.MetadataKey)
		}
		m.Label = label
	}

	return m, nil
}

// Encode merges the owned fields back into the remainder and serializes it.
// Comments and key order of the parsed input are not reproduced.
func (m *Manifest) Encode() ([]byte, error) {
	doc, _ := cloneValue(m.rest).(map[string]any)
	if doc == nil {
		doc = map[string]any{}
	}

	if len(m.Pins) > 0 || len(m.Transitive) > 0 {
		deps := ensureTable(doc, "dependencies")
		for name, dep := range m.Pins {
			entry, _ := cloneValue(dep.rest).(map[string]any)
			if entry == nil {
				entry = map[string]any{}
			}
			entry["git"] = dep.Git
			entry["rev"] = dep.Rev
			if dep.Version != "" {
				entry["version"] = dep.Version
			}
			deps[name] = entry
		}
		for name, dep := range m.Transitive {
			if !dep.table {
				deps[name] = dep.Version
				continue
			}
			entry, _ := cloneValue(dep.rest).(map[string]any)
			if entry == nil {
				entry = map[string]any{}
			}
			entry["version"] = dep.Version
			deps[name] = entry
		}
	}

	if m.schema.MetadataKey != "" {
		meta := ensureTable(ensureTable(doc, "package"), "metadata")
		meta[m.schema.MetadataKey] = m.Label
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w: encode: %w", ErrManifestFormat, err)
	}

	return buf.Bytes(), nil
}

// Revision returns the revision shared by all pins.
func (m *Manifest) Revision() (string, error) {
	names := m.pinNames()
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no pinned dependency configured", ErrManifestFormat)
	}

	rev := m.Pins[names[0]].Rev
	for _, name := range names[1:] {
		if m.Pins[name].Rev != rev {
			return "", fmt.Errorf("%w: pins disagree: %s=%s, %s=%s",
				ErrManifestFormat, names[0], rev, name, m.Pins[name].Rev)
		}
	}

	return rev, nil
}

// SetRevision moves every pin to rev.
func (m *Manifest) SetRevision(rev string) {
	for _, dep := range m.Pins {
		dep.Rev = rev
	}
}

// SetTransitive copies the version of every transitive pin from lock.
func (m *Manifest) SetTransitive(lock *LockSnapshot) error {
	names := make([]string, 0, len(m.Transitive))
	for name := range m.Transitive {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		version, err := lock.Version(name)
		if err != nil {
			return err
		}
		m.Transitive[name].Version = version
	}

	return nil
}

// PrimaryPin returns the first configured pin name.
func (m *Manifest) PrimaryPin() string {
	if len(m.schema.Pins) == 0 {
		return ""
	}

	return m.schema.Pins[0]
}

func (m *Manifest) pinNames() []string {
	names := make([]string, 0, len(m.schema.Pins))
	for _, name := range m.schema.Pins {
		if _, ok := m.Pins[name]; ok {
			names = append(names, name)
		}
	}

	return names
}

// owned is a comparable snapshot of the owned fields.
func (m *Manifest) owned() map[string]string {
	out := map[string]string{"label": m.Label}
	for name, dep := range m.Pins {
		out["pin."+name+".git"] = dep.Git
		out["pin."+name+".rev"] = dep.Rev
		out["pin."+name+".version"] = dep.Version
	}
	for name, dep := range m.Transitive {
		out["dep."+name] = dep.Version
	}

	return out
}

func takeGitDependency(deps map[string]any, name string) (*GitDependency, error) {
	raw, ok := deps[name]
	if !ok {
		return nil, fmt.Errorf("%w: dependencies.%s is missing", ErrManifestFormat, name)
	}
	entry, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: dependencies.%s must be a table with git and rev", ErrManifestFormat, name)
	}
	delete(deps, name)

	where := "dependencies." + name
	entry, _ = cloneValue(entry).(map[string]any)
	gitURL, hasGit, err := takeString(entry, "git", where)
	if err != nil {
		return nil, err
	}
	rev, hasRev, err := takeString(entry, "rev", where)
	if err != nil {
		return nil, err
	}
	if !hasGit || !hasRev {
		return nil, fmt.Errorf("%w: %s needs both git and rev", ErrManifestFormat, where)
	}
	version, _, err := takeString(entry, "version", where)
	if err != nil {
		return nil, err
	}

	return &GitDependency{Git: gitURL, Rev: rev, Version: version, rest: entry}, nil
}

func takeVersionDependency(deps map[string]any, name string) (*VersionDependency, error) {
	raw, ok := deps[name]
	if !ok {
		return nil, fmt.Errorf("%w: dependencies.%s is missing", ErrManifestFormat, name)
	}
	delete(deps, name)

	switch v := raw.(type) {
	case string:
		return &VersionDependency{Version: v}, nil
	case map[string]any:
		where := "dependencies." + name
		entry, _ := cloneValue(v).(map[string]any)
		version, ok, err := takeString(entry, "version", where)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s has no version", ErrManifestFormat, where)
		}

		return &VersionDependency{Version: version, table: true, rest: entry}, nil
	default:
		return nil, fmt.Errorf("%w: dependencies.%s has unexpected type %T", ErrManifestFormat, name, raw)
	}
}

// subTable returns doc[key] as a table. parent only decorates errors.
func subTable(doc map[string]any, key, parent string) (map[string]any, error) {
	where := key
	if parent != "" {
		where = parent + "." + key
	}

	raw, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("%w: [%s] is missing", ErrManifestFormat, where)
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: [%s] is a %T, not a table", ErrManifestFormat, where, raw)
	}

	return table, nil
}

// takeString removes key from table and returns it as a string.
func takeString(table map[string]any, key, where string) (string, bool, error) {
	raw, ok := table[key]
	if !ok {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: %s.%s is a %T, not a string", ErrManifestFormat, where, key, raw)
	}
	delete(table, key)

	return s, true, nil
}

func ensureTable(doc map[string]any, key string) map[string]any {
	if table, ok := doc[key].(map[string]any); ok {
		return table
	}
	table := map[string]any{}
	doc[key] = table

	return table
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}

		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, val := range t {
			out[i], _ = cloneValue(val).(map[string]any)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}

		return out
	default:
		return v
	}
}
