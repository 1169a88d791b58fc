package deploy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rflorenc/azure-search-workbench/datasource"
	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/index"
	"github.com/rflorenc/azure-search-workbench/indexer"
	"github.com/rflorenc/azure-search-workbench/search"
	"github.com/rflorenc/azure-search-workbench/skills"
)

// Resource is one typed resource read from a manifest.
type Resource struct {
	Type   search.ResourceType
	Object search.Resource
	Source string // file it came from
}

// Name returns the resource name.
func (r Resource) Name() string { return r.Object.ResourceName() }

func (r Resource) String() string { return r.Type.Name + "/" + r.Name() }

// Manifest is a set of resources sorted in dependency order.
type Manifest struct {
	Resources []Resource
}

// document is the on-disk shape of one manifest entry.
type document struct {
	Kind string         `yaml:"kind"`
	Spec map[string]any `yaml:"spec"`
}

// LoadManifest reads a manifest file or directory.
//
// Files hold one or more YAML (or JSON) documents of the form
// {kind: index, spec: {...}}. A directory is walked; a top-level
// subdirectory named after a collection (indexes/, datasources/, ...) is read
// in the export layout, where each file is a bare payload of that kind.
func LoadManifest(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, faults.NewTypedError(faults.ConfigError, fmt.Sprintf("reading manifest %s", path), err)
	}

	m := &Manifest{}
	if !info.IsDir() {
		if err := m.readDocuments(path); err != nil {
			return nil, err
		}
		return m, m.finish()
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, faults.NewTypedError(faults.ConfigError, fmt.Sprintf("reading manifest %s", path), err)
	}
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		if e.IsDir() {
			rt, err := search.LookupResourceType(e.Name())
			if err != nil {
				continue
			}
			if err := m.readPayloads(rt, full); err != nil {
				return nil, err
			}
			continue
		}
		if isManifestFile(e.Name()) {
			if err := m.readDocuments(full); err != nil {
				return nil, err
			}
		}
	}
	return m, m.finish()
}

func isManifestFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// readDocuments reads every {kind, spec} document in a file.
func (m *Manifest) readDocuments(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return faults.NewTypedError(faults.ConfigError, fmt.Sprintf("reading %s", path), err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for n := 1; ; n++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return faults.Parsef(err, "%s: document %d", path, n)
		}
		if doc.Kind == "" && doc.Spec == nil {
			continue // empty document between separators
		}
		rt, err := search.LookupResourceType(doc.Kind)
		if err != nil {
			return fmt.Errorf("%s: document %d: %w", path, n, err)
		}
		if doc.Spec == nil {
			return faults.Validationf("%s: document %d: %s has no spec", path, n, rt.Name)
		}
		if err := m.add(rt, doc.Spec, path); err != nil {
			return err
		}
	}
}

// readPayloads reads the export layout: dir/<name>.json|yaml.
func (m *Manifest) readPayloads(rt search.ResourceType, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return faults.NewTypedError(faults.ConfigError, fmt.Sprintf("reading %s", dir), err)
	}
	for _, e := range entries {
		if e.IsDir() || !isManifestFile(e.Name()) {
			continue
		}
		full := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(full)
		if err != nil {
			return faults.NewTypedError(faults.ConfigError, fmt.Sprintf("reading %s", full), err)
		}
		var payload map[string]any
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return faults.Parsef(err, "%s", full)
		}
		if err := m.add(rt, payload, full); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manifest) add(rt search.ResourceType, spec map[string]any, source string) error {
	obj, err := decodeResource(rt, spec)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	m.Resources = append(m.Resources, Resource{Type: rt, Object: obj, Source: source})
	return nil
}

// finish rejects duplicates and sorts into dependency order, keeping file
// order within a kind.
func (m *Manifest) finish() error {
	seen := make(map[string]string)
	for _, r := range m.Resources {
		if prev, ok := seen[r.String()]; ok {
			return faults.Validationf("%s is defined in both %s and %s", r, prev, r.Source)
		}
		seen[r.String()] = r.Source
	}
	slices.SortStableFunc(m.Resources, func(a, b Resource) int {
		return kindRank(a.Type) - kindRank(b.Type)
	})
	return nil
}

func kindRank(rt search.ResourceType) int {
	return slices.IndexFunc(search.ResourceTypes, func(t search.ResourceType) bool { return t.Name == rt.Name })
}

// decodeResource turns a YAML payload into the typed resource for rt. The
// payload goes through JSON so numbers look the same as on the wire.
func decodeResource(rt search.ResourceType, spec map[string]any) (search.Resource, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, faults.Parsef(err, "encoding %s", rt.Name)
	}
	switch rt.Name {
	case "datasource":
		return typed(datasource.Load(raw))
	case "index":
		return typed(index.Load(raw))
	case "skillset":
		return typed(skills.LoadSkillset(raw))
	case "indexer":
		return typed(indexer.Load(raw))
	}
	return nil, faults.Validationf("no loader for kind %q", rt.Name)
}

// typed keeps a nil pointer from becoming a non-nil interface.
func typed[T search.Resource](v T, err error) (search.Resource, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Counts returns how many resources of each kind the manifest holds.
func (m *Manifest) Counts() map[string]int {
	out := make(map[string]int)
	for _, r := range m.Resources {
		out[r.Type.Name]++
	}
	return out
}
