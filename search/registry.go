package search

import (
	"slices"
	"strings"

	"github.com/rflorenc/azure-search-workbench/faults"
)

// ResourceType describes one top-level collection.
type ResourceType struct {
	Name    string // singular kind used in manifests, e.g. "index"
	Label   string
	Path    string // collection path, e.g. "indexes"
	Aliases []string
}

// ResourceTypes lists the collections in dependency order: an indexer needs
// its data source, index and skillset to exist first.
var ResourceTypes = []ResourceType{
	{Name: "datasource", Label: "Data Sources", Path: "datasources", Aliases: []string{"ds", "datasources", "data-source", "data-sources"}},
	{Name: "index", Label: "Indexes", Path: "indexes", Aliases: []string{"idx", "indexes", "indices"}},
	{Name: "skillset", Label: "Skillsets", Path: "skillsets", Aliases: []string{"ss", "skillsets"}},
	{Name: "indexer", Label: "Indexers", Path: "indexers", Aliases: []string{"ixr", "indexers"}},
}

// DeleteOrder returns ResourceTypes reversed.
func DeleteOrder() []ResourceType {
	out := slices.Clone(ResourceTypes)
	slices.Reverse(out)
	return out
}

// LookupResourceType resolves a kind name or alias, case-insensitively.
func LookupResourceType(name string) (ResourceType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, rt := range ResourceTypes {
		if rt.Name == n || slices.Contains(rt.Aliases, n) {
			return rt, nil
		}
	}
	return ResourceType{}, faults.Validationf("unknown resource kind %q (known: %s)", name, strings.Join(KindNames(), ", "))
}

// KindNames returns the singular kind names in dependency order.
func KindNames() []string {
	names := make([]string, len(ResourceTypes))
	for i, rt := range ResourceTypes {
		names[i] = rt.Name
	}
	return names
}
