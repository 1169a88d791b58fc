// Package indexer models indexers, which pull documents from a data source,
// optionally run a skillset over them and write the results into an index.
package indexer

import (
	"fmt"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/mapping"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Indexer is an indexer definition.
type Indexer struct {
	Name                string
	Description         string
	DataSourceName      string
	TargetIndexName     string
	SkillsetName        string
	FieldMappings       []mapping.FieldMapping
	OutputFieldMappings []mapping.FieldMapping
	Schedule            *Schedule
	Disabled            bool
	Parameters          *Parameters
	Params              wire.Params
}

type Option func(*Indexer)

func WithDescription(d string) Option { return func(ix *Indexer) { ix.Description = d } }

func WithSkillset(name string) Option { return func(ix *Indexer) { ix.SkillsetName = name } }

func WithFieldMappings(m ...mapping.FieldMapping) Option {
	return func(ix *Indexer) { ix.FieldMappings = append(ix.FieldMappings, m...) }
}

func WithOutputFieldMappings(m ...mapping.FieldMapping) Option {
	return func(ix *Indexer) { ix.OutputFieldMappings = append(ix.OutputFieldMappings, m...) }
}

func WithSchedule(s *Schedule) Option { return func(ix *Indexer) { ix.Schedule = s } }

func WithDisabled(d bool) Option { return func(ix *Indexer) { ix.Disabled = d } }

// WithParameters replaces the default parameters. nil sends none.
func WithParameters(p *Parameters) Option { return func(ix *Indexer) { ix.Parameters = p } }

func WithParams(p wire.Params) Option { return func(ix *Indexer) { ix.Params = p } }

// New builds an indexer with DefaultParameters.
func New(name, dataSource, targetIndex string, opts ...Option) (*Indexer, error) {
	ix := &Indexer{
		Name:            name,
		DataSourceName:  dataSource,
		TargetIndexName: targetIndex,
		Parameters:      DefaultParameters(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	if err := ix.Validate(); err != nil {
		return nil, err
	}
	return ix, nil
}

// ResourceName implements search.Resource.
func (ix *Indexer) ResourceName() string { return ix.Name }

func (ix *Indexer) Validate() error {
	switch {
	case ix.Name == "":
		return faults.Validationf("indexer: name is required")
	case ix.DataSourceName == "":
		return faults.Validationf("indexer %q: data source name is required", ix.Name)
	case ix.TargetIndexName == "":
		return faults.Validationf("indexer %q: target index name is required", ix.Name)
	}
	for _, m := range append(append([]mapping.FieldMapping(nil), ix.FieldMappings...), ix.OutputFieldMappings...) {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("indexer %q: %w", ix.Name, err)
		}
	}
	if ix.Schedule != nil {
		if err := ix.Schedule.Validate(); err != nil {
			return fmt.Errorf("indexer %q: %w", ix.Name, err)
		}
	}
	return nil
}

func (ix *Indexer) ToDict() map[string]any {
	base := map[string]any{
		"name":                ix.Name,
		"description":         ix.Description,
		"dataSourceName":      ix.DataSourceName,
		"targetIndexName":     ix.TargetIndexName,
		"skillsetName":        ix.SkillsetName,
		"fieldMappings":       mapping.Dicts(ix.FieldMappings),
		"outputFieldMappings": mapping.Dicts(ix.OutputFieldMappings),
		"disabled":            ix.Disabled,
	}
	if ix.Schedule != nil {
		base["schedule"] = ix.Schedule.ToDict()
	}
	if ix.Parameters != nil {
		base["parameters"] = ix.Parameters.ToDict()
	}
	return wire.Finish(base, ix.Params)
}

func (ix *Indexer) String() string {
	return fmt.Sprintf("<Indexer: %s %s -> %s (skillset %q)>", ix.Name, ix.DataSourceName, ix.TargetIndexName, ix.SkillsetName)
}

// Load rebuilds an indexer from its wire form.
func Load(data any) (*Indexer, error) {
	f, err := wire.Load("indexer", data)
	if err != nil {
		return nil, err
	}
	ix := &Indexer{
		Name:            f.String("name"),
		Description:     f.String("description"),
		DataSourceName:  f.String("data_source_name"),
		TargetIndexName: f.String("target_index_name"),
		SkillsetName:    f.String("skillset_name"),
		Disabled:        f.Bool("disabled"),
	}
	if ix.FieldMappings, err = mapping.LoadAll(f.Maps("field_mappings")); err != nil {
		return nil, fmt.Errorf("indexer %q field mappings: %w", ix.Name, err)
	}
	if ix.OutputFieldMappings, err = mapping.LoadAll(f.Maps("output_field_mappings")); err != nil {
		return nil, fmt.Errorf("indexer %q output field mappings: %w", ix.Name, err)
	}
	if s := f.Map("schedule"); s != nil {
		if ix.Schedule, err = LoadSchedule(s); err != nil {
			return nil, fmt.Errorf("indexer %q: %w", ix.Name, err)
		}
	}
	if p := f.Map("parameters"); p != nil {
		if ix.Parameters, err = LoadParameters(p); err != nil {
			return nil, fmt.Errorf("indexer %q: %w", ix.Name, err)
		}
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	ix.Params = f.Rest()
	if err := ix.Validate(); err != nil {
		return nil, err
	}
	return ix, nil
}
