// Package mapping models the field mappings used by indexers, both for
// source-to-index fields and for enrichment outputs.
package mapping

import (
	"fmt"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// Function names accepted by the service.
const (
	Base64Encode       = "base64Encode"
	Base64Decode       = "base64Decode"
	ExtractTokenAtPos  = "extractTokenAtPosition"
	JSONArrayToStrings = "jsonArrayToStringCollection"
	URLEncode          = "urlEncode"
	URLDecode          = "urlDecode"
)

// Function transforms a source value before it is written to the target.
type Function struct {
	Name       string
	Parameters map[string]any
}

func (f *Function) ToDict() map[string]any {
	return wire.Finish(map[string]any{
		"name":       f.Name,
		"parameters": f.Parameters,
	}, nil)
}

// FieldMapping routes SourceFieldName to TargetFieldName. For output field
// mappings the source is an enrichment path such as /document/pages/*.
type FieldMapping struct {
	SourceFieldName string
	TargetFieldName string
	Function        *Function
	Params          wire.Params
}

// New builds a mapping. An empty target means "same name as the source".
func New(source, target string) FieldMapping {
	return FieldMapping{SourceFieldName: source, TargetFieldName: target}
}

// WithFunction returns a copy of m with a mapping function attached.
func (m FieldMapping) WithFunction(name string, params map[string]any) FieldMapping {
	m.Function = &Function{Name: name, Parameters: params}
	return m
}

func (m FieldMapping) Validate() error {
	if m.SourceFieldName == "" {
		return faults.Validationf("field mapping: source field name is required")
	}
	if m.Function != nil && m.Function.Name == "" {
		return faults.Validationf("field mapping %q: mapping function needs a name", m.SourceFieldName)
	}
	return nil
}

func (m FieldMapping) ToDict() map[string]any {
	base := map[string]any{
		"sourceFieldName": m.SourceFieldName,
		"targetFieldName": m.TargetFieldName,
	}
	if m.Function != nil {
		base["mappingFunction"] = m.Function.ToDict()
	}
	return wire.Finish(base, m.Params)
}

func (m FieldMapping) String() string {
	return fmt.Sprintf("%s -> %s", m.SourceFieldName, m.TargetFieldName)
}

// Load rebuilds a FieldMapping from JSON text or a decoded map.
func Load(data any) (FieldMapping, error) {
	f, err := wire.Load("field mapping", data)
	if err != nil {
		return FieldMapping{}, err
	}
	m := FieldMapping{
		SourceFieldName: f.String("source_field_name"),
		TargetFieldName: f.String("target_field_name"),
	}
	if fn := f.Map("mapping_function"); fn != nil {
		name, _ := fn["name"].(string)
		params, _ := fn["parameters"].(map[string]any)
		m.Function = &Function{Name: name, Parameters: params}
	}
	m.Params = f.Rest()
	if err := f.Err(); err != nil {
		return FieldMapping{}, err
	}
	return m, m.Validate()
}

// LoadAll loads a list of mappings, as found under fieldMappings.
func LoadAll(items []map[string]any) ([]FieldMapping, error) {
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]FieldMapping, 0, len(items))
	for i, item := range items {
		m, err := Load(item)
		if err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// Dicts renders a list of mappings.
func Dicts(ms []FieldMapping) []map[string]any {
	return wire.Dicts(ms)
}
