package wire

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rflorenc/azure-search-workbench/faults"
)

// Decode normalizes a load input into a fresh top-level map. It accepts JSON
// text (string, []byte, json.RawMessage), a map, or any value that marshals to
// a JSON object. Anything else is a ParseError.
func Decode(data any) (map[string]any, error) {
	switch v := data.(type) {
	case nil:
		return nil, faults.Parsef(nil, "cannot load from nil")
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	case Params:
		return Decode(map[string]any(v))
	case string:
		return decodeJSON([]byte(v))
	case []byte:
		return decodeJSON(v)
	case json.RawMessage:
		return decodeJSON(v)
	case Object:
		return Decode(v.ToDict())
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, faults.Parsef(err, "cannot load from %T", data)
	}
	return decodeJSON(raw)
}

func decodeJSON(raw []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, faults.Parsef(err, "invalid JSON")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, faults.Parsef(nil, "expected a JSON object, got %s", jsonKind(v))
	}
	return m, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}

// Fields walks a decoded payload during load. Each accessor removes the key it
// reads; whatever remains at the end becomes the Params bag. The first type
// mismatch is remembered and reported by Err.
type Fields struct {
	kind string
	m    map[string]any
	err  error
}

// NewFields snake_cases the top-level keys of m and wraps the result. kind is
// used in error messages.
func NewFields(kind string, m map[string]any) *Fields {
	return &Fields{kind: kind, m: ToSnakeCaseKeys(m)}
}

// Load decodes data and returns a Fields over it.
func Load(kind string, data any) (*Fields, error) {
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", kind, err)
	}
	return NewFields(kind, m), nil
}

func (f *Fields) fail(key string, want string, got any) {
	if f.err == nil {
		f.err = faults.Validationf("%s: %q must be %s, got %s", f.kind, key, want, describe(got))
	}
}

// Failf records a validation error unless one is already pending.
func (f *Fields) Failf(format string, args ...any) {
	if f.err == nil {
		f.err = faults.Validationf("%s: %s", f.kind, fmt.Sprintf(format, args...))
	}
}

// Err returns the first error recorded.
func (f *Fields) Err() error { return f.err }

// Has reports whether key is present and non-nil.
func (f *Fields) Has(key string) bool {
	v, ok := f.m[key]
	return ok && v != nil
}

// Take removes and returns the raw value for key.
func (f *Fields) Take(key string) (any, bool) {
	v, ok := f.m[key]
	if ok {
		delete(f.m, key)
	}
	return v, ok && v != nil
}

// Rest returns the keys not consumed so far.
func (f *Fields) Rest() Params {
	if len(f.m) == 0 {
		return nil
	}
	out := make(Params, len(f.m))
	for k, v := range f.m {
		out[k] = v
	}
	return out
}

func (f *Fields) String(key string) string {
	v, ok := f.Take(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		f.fail(key, "a string", v)
	}
	return s
}

func (f *Fields) Strings(key string) []string {
	v, ok := f.Take(key)
	if !ok {
		return nil
	}
	out, ok := StringSlice(v)
	if !ok {
		f.fail(key, "a list of strings", v)
	}
	return out
}

func (f *Fields) Bool(key string) bool {
	p := f.BoolPtr(key)
	return p != nil && *p
}

func (f *Fields) BoolPtr(key string) *bool {
	v, ok := f.Take(key)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		f.fail(key, "a boolean", v)
		return nil
	}
	return &b
}

func (f *Fields) IntPtr(key string) *int {
	v, ok := f.Take(key)
	if !ok {
		return nil
	}
	n, ok := Int(v)
	if !ok {
		if x, num := Float(v); num && x == math.Trunc(x) {
			if f.err == nil {
				f.err = faults.Parsef(nil, "%s: %q value %v overflows an integer", f.kind, key, v)
			}
			return nil
		}
		f.fail(key, "an integer", v)
		return nil
	}
	return &n
}

func (f *Fields) Float(key string) float64 {
	p := f.FloatPtr(key)
	if p == nil {
		return 0
	}
	return *p
}

func (f *Fields) FloatPtr(key string) *float64 {
	v, ok := f.Take(key)
	if !ok {
		return nil
	}
	n, ok := Float(v)
	if !ok {
		f.fail(key, "a number", v)
		return nil
	}
	return &n
}

func (f *Fields) Time(key string) *time.Time {
	s := f.String(key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		f.fail(key, "an RFC 3339 timestamp", s)
		return nil
	}
	return &t
}

func (f *Fields) Map(key string) map[string]any {
	v, ok := f.Take(key)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		f.fail(key, "an object", v)
	}
	return m
}

func (f *Fields) Maps(key string) []map[string]any {
	v, ok := f.Take(key)
	if !ok {
		return nil
	}
	out, ok := MapSlice(v)
	if !ok {
		f.fail(key, "a list of objects", v)
	}
	return out
}

// Int converts the numeric shapes produced by encoding/json and yaml.v3.
// Fractional floats and values outside the int range are rejected.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < math.MinInt || i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// Float converts any numeric shape to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// StringSlice accepts []string or a []any holding only strings.
func StringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

// MapSlice accepts []map[string]any or a []any holding only objects.
func MapSlice(v any) ([]map[string]any, bool) {
	switch s := v.(type) {
	case []map[string]any:
		return s, true
	case []any:
		out := make([]map[string]any, 0, len(s))
		for _, item := range s {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	}
	return nil, false
}

func describe(v any) string {
	switch v.(type) {
	case nil, []any, string, float64, bool:
		return jsonKind(v)
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
