// Package wire holds the serialization contract shared by every search
// resource: typed values render themselves into camelCase JSON objects and
// are rebuilt from them, with unknown attributes carried in a Params bag.
package wire

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Object is implemented by every resource and sub-resource. ToDict must be
// deterministic for a given state.
type Object interface {
	ToDict() map[string]any
}

// Params carries attributes the typed structs do not model. They are merged
// into the payload on serialization and win over typed attributes.
type Params map[string]any

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Finish is the last step of every ToDict: params are merged over base, keys
// are camelCased and empty values are dropped.
func Finish(base map[string]any, params Params) map[string]any {
	out := ToCamelCaseKeys(base)
	if out == nil {
		out = make(map[string]any, len(params))
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(k) > 0 && k[0] == '@' {
			out[k] = params[k]
			continue
		}
		out[ToCamelCase(k)] = params[k]
	}
	return RemoveEmptyValues(out)
}

// RemoveEmptyValues returns a copy of m without nil values and without
// zero-length strings, slices, arrays and maps. false and 0 are kept.
// Only the top level is inspected.
func RemoveEmptyValues(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isEmpty(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Map, reflect.Slice:
		return rv.IsNil() || rv.Len() == 0
	case reflect.String, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// ToJSON renders o as compact JSON.
func ToJSON(o Object) ([]byte, error) {
	data, err := json.Marshal(o.ToDict())
	if err != nil {
		return nil, fmt.Errorf("marshaling %T: %w", o, err)
	}
	return data, nil
}

// Dicts renders a slice of objects, skipping nil entries.
func Dicts[T Object](items []T) []map[string]any {
	if len(items) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if isEmpty(any(it)) {
			continue
		}
		out = append(out, it.ToDict())
	}
	return out
}
