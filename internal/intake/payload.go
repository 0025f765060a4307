package intake

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is a decoded JSON request body keyed by payload key. A key that
// is present with a null value is distinct from an absent key.
type Payload map[string]any

// Has reports whether key was sent, even as null.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Values returns the payload values for the given fields in order; absent
// keys yield nil.
func (p Payload) Values(fields []Field) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = p[f.Key]
	}
	return out
}

// check rejects non-scalar values under any of the given keys.
func (p Payload) check(keys ...string) error {
	for _, k := range keys {
		switch p[k].(type) {
		case map[string]any, []any:
			return newError(ErrInvalidValue, "field %s must be a string, number, boolean or null", k)
		}
	}
	return nil
}

// NormalizeID returns the canonical ENT-<n> form of an intake id. Whitespace
// and a leading "ENT-" in any case are stripped before re-prefixing, so the
// function is idempotent.
func NormalizeID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= 4 && strings.EqualFold(s[:4], "ENT-") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", newError(ErrInvalidID, "Intake ID %q is not valid", raw)
	}
	return "ENT-" + s, nil
}

// IDString renders a decoded JSON id value as text. Numbers lose no digits.
func IDString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
