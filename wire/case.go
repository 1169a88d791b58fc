package wire

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a camelCase or PascalCase identifier to snake_case.
// An underscore is inserted before an uppercase letter that follows a
// lowercase letter or digit, or that starts a new word inside a run of
// capitals ("HTTPHeaders" -> "http_headers").
func ToSnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpper(c) && i > 0 {
			prev := s[i-1]
			afterWord := isLower(prev) || isDigit(prev)
			startsWord := i+1 < len(s) && isLower(s[i+1])
			if afterWord || startsWord {
				b.WriteByte('_')
			}
		}
		b.WriteByte(c)
	}
	return strings.ToLower(b.String())
}

// ToCamelCase converts snake_case to camelCase. The first segment is kept
// verbatim; every following segment is title-cased.
func ToCamelCase(s string) string {
	parts := strings.Split(s, "_")
	if len(parts) == 1 {
		return s
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(title(p))
	}
	return b.String()
}

// ToSnakeCaseKeys returns a copy of m with its top-level keys snake_cased.
func ToSnakeCaseKeys(m map[string]any) map[string]any {
	return convertKeys(m, ToSnakeCase)
}

// ToCamelCaseKeys returns a copy of m with its top-level keys camelCased.
func ToCamelCaseKeys(m map[string]any) map[string]any {
	return convertKeys(m, ToCamelCase)
}

func convertKeys(m map[string]any, conv func(string) string) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if strings.HasPrefix(k, "@") {
			out[k] = v
			continue
		}
		out[conv(k)] = v
	}
	return out
}

// title upper-cases the first letter of every letter run and lower-cases the
// rest, the way "max" -> "Max" and "2d" -> "2D".
func title(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
