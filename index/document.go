package index

import (
	"math"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/wire"
)

// CheckDocument verifies that every value in doc has a JSON shape the
// corresponding field type accepts. Unknown keys and @-prefixed annotations
// are ignored, nil is always accepted.
func (idx *Index) CheckDocument(doc map[string]any) error {
	for name, v := range doc {
		if v == nil || len(name) == 0 || name[0] == '@' {
			continue
		}
		f := idx.Field(name)
		if f == nil {
			continue
		}
		if !acceptsValue(f.Type, v) {
			return faults.Validationf("document field %q: %T is not a valid %s value", name, v, f.Type)
		}
	}
	if key := idx.KeyField(); key != nil {
		if s, _ := doc[key.Name].(string); s == "" {
			return faults.Validationf("document is missing key field %q", key.Name)
		}
	}
	return nil
}

func acceptsValue(t FieldType, v any) bool {
	switch t {
	case String, DateTimeOffset:
		_, ok := v.(string)
		return ok
	case StringCollection:
		_, ok := wire.StringSlice(v)
		return ok
	case Int32:
		n, ok := wire.Int(v)
		return ok && n >= math.MinInt32 && n <= math.MaxInt32
	case Int64:
		_, ok := wire.Int(v)
		return ok
	case Double:
		_, ok := wire.Float(v)
		return ok
	case Boolean:
		_, ok := v.(bool)
		return ok
	case GeographyPoint:
		m, ok := v.(map[string]any)
		return ok && m["type"] == "Point"
	}
	return false
}
