// Package datasource models the connections indexers read documents from.
package datasource

import (
	"fmt"
	"slices"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Data source types accepted by the service.
const (
	AzureBlob  = "azureblob"
	AzureTable = "azuretable"
	AzureSQL   = "azuresql"
	CosmosDB   = "cosmosdb"
	ADLSGen2   = "adlsgen2"
	MySQL      = "mysql"
)

// Types lists the accepted data source types.
var Types = []string{AzureBlob, AzureTable, AzureSQL, CosmosDB, ADLSGen2, MySQL}

// Container names the blob container, table or collection to read from.
// Query narrows it (a virtual folder for blobs, a filter for tables).
type Container struct {
	Name  string
	Query string
}

// DataSource is a data source definition. The service redacts
// ConnectionString on reads, so loaded data sources usually have it empty.
type DataSource struct {
	Name             string
	Description      string
	Type             string
	ConnectionString string
	Container        Container
	Params           wire.Params
}

type Option func(*DataSource)

func WithType(t string) Option { return func(ds *DataSource) { ds.Type = t } }

func WithDescription(d string) Option { return func(ds *DataSource) { ds.Description = d } }

func WithQuery(q string) Option { return func(ds *DataSource) { ds.Container.Query = q } }

// WithParams adds attributes such as dataChangeDetectionPolicy.
func WithParams(p wire.Params) Option { return func(ds *DataSource) { ds.Params = p } }

// New builds a data source of type azureblob unless WithType says otherwise.
func New(name, connectionString, container string, opts ...Option) (*DataSource, error) {
	ds := &DataSource{
		Name:             name,
		Type:             AzureBlob,
		ConnectionString: connectionString,
		Container:        Container{Name: container},
	}
	for _, opt := range opts {
		opt(ds)
	}
	if ds.ConnectionString == "" {
		return nil, faults.Validationf("data source %q: connection string is required", name)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// ResourceName implements search.Resource.
func (ds *DataSource) ResourceName() string { return ds.Name }

func (ds *DataSource) Validate() error {
	if ds.Name == "" {
		return faults.Validationf("data source: name is required")
	}
	if !slices.Contains(Types, ds.Type) {
		return faults.Validationf("data source %q: unknown type %q (known: %v)", ds.Name, ds.Type, Types)
	}
	if ds.Container.Name == "" {
		return faults.Validationf("data source %q: container name is required", ds.Name)
	}
	return nil
}

func (ds *DataSource) ToDict() map[string]any {
	base := map[string]any{
		"name":        ds.Name,
		"description": ds.Description,
		"type":        ds.Type,
		"container": wire.RemoveEmptyValues(map[string]any{
			"name":  ds.Container.Name,
			"query": ds.Container.Query,
		}),
	}
	if ds.ConnectionString != "" {
		base["credentials"] = map[string]any{"connectionString": ds.ConnectionString}
	}
	return wire.Finish(base, ds.Params)
}

func (ds *DataSource) String() string {
	return fmt.Sprintf("<DataSource: %s (%s) container=%s>", ds.Name, ds.Type, ds.Container.Name)
}

// Load rebuilds a data source from its wire form. A missing or null
// connection string is accepted.
func Load(data any) (*DataSource, error) {
	f, err := wire.Load("data source", data)
	if err != nil {
		return nil, err
	}
	ds := &DataSource{
		Name:        f.String("name"),
		Description: f.String("description"),
		Type:        f.String("type"),
	}
	if ds.Type == "" {
		ds.Type = AzureBlob
	}
	if creds := f.Map("credentials"); creds != nil {
		if v, ok := creds["connectionString"]; ok && v != nil {
			s, ok := v.(string)
			if !ok {
				f.Failf("credentials.connectionString must be a string")
			}
			ds.ConnectionString = s
		}
	}
	if c := f.Map("container"); c != nil {
		cf := wire.NewFields("data source container", c)
		ds.Container = Container{Name: cf.String("name"), Query: cf.String("query")}
		if err := cf.Err(); err != nil {
			return nil, err
		}
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	ds.Params = f.Rest()
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}
