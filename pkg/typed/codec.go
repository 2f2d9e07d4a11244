package typed

import (
	"math"
	"strconv"
	"strings"
)

// Encode converts a plain value into its wire form for kind. Reference values
// become {"@id": ...}; scalar kinds become tagged values; KindPlain returns the
// input unchanged. Numeric and date input that cannot be coerced produces the
// "NaN" sentinel instead of failing.
func Encode(plain any, kind Kind) any {
	switch kind {
	case KindReference:
		return map[string]any{KeyID: stringify(plain)}
	case KindString:
		return tagged(XSDString, stringify(plain))
	case KindBoolean:
		return tagged(XSDBoolean, strconv.FormatBool(isTrue(plain)))
	case KindInteger:
		if n, ok := parseInteger(plain); ok {
			return tagged(XSDInteger, strconv.FormatInt(n, 10))
		}
		return tagged(XSDInteger, NaN)
	case KindDouble:
		if f, ok := parseDouble(plain); ok {
			return tagged(XSDDouble, formatFloat(f))
		}
		return tagged(XSDDouble, NaN)
	case KindDateTime:
		if ms, ok := parseDate(plain); ok {
			return tagged(XSDDateTime, strconv.FormatInt(ms, 10))
		}
		return tagged(XSDDateTime, NaN)
	default:
		return plain
	}
}

// EncodeChecked behaves like Encode but also reports a *CoercionError when the
// sentinel had to be written. The encoded value is identical either way.
func EncodeChecked(plain any, kind Kind) (any, error) {
	encoded := Encode(plain, kind)
	if kind.IsScalar() && kind != KindString {
		if value, _ := ValueOf(encoded); value == NaN {
			return encoded, &CoercionError{Kind: kind, Input: plain}
		}
	}
	return encoded, nil
}

// Decode extracts the plain value from a wire value. Reference, string and
// datetime kinds yield strings, boolean yields a bool, integer an int64 and
// double a float64. Absent or malformed input degrades to the zero value of
// the kind; KindPlain returns typed unchanged.
func Decode(typed any, kind Kind) any {
	switch kind {
	case KindReference:
		id, _ := IDOf(typed)
		return id
	case KindString, KindDateTime:
		value, _ := ValueOf(typed)
		return value
	case KindBoolean:
		value, _ := ValueOf(typed)
		return strings.EqualFold(strings.TrimSpace(value), "true")
	case KindInteger:
		value, ok := ValueOf(typed)
		if !ok {
			value = "0"
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			if n, ok := truncate(f); ok {
				return n
			}
		}
		return int64(0)
	case KindDouble:
		value, ok := ValueOf(typed)
		if !ok {
			value = "0"
		}
		f, ok := parseDouble(value)
		if !ok || math.IsNaN(f) {
			return float64(0)
		}
		return f
	default:
		return typed
	}
}

// DecodeAny decodes a scalar wire value using its own "@type" tag, falling back
// to the "@id" of references. Values carrying neither are returned unchanged.
func DecodeAny(typed any) any {
	m, ok := typed.(map[string]any)
	if !ok {
		return typed
	}
	if tag, ok := m[KeyType].(string); ok {
		if kind, known := KindForIRI(tag); known {
			return Decode(m, kind)
		}
	}
	if _, ok := m[KeyID]; ok && len(m) == 1 {
		return Decode(m, KindReference)
	}
	return typed
}

// IDOf extracts the "@id" of a reference. Bare strings are accepted as ids.
func IDOf(typed any) (string, bool) {
	switch v := typed.(type) {
	case map[string]any:
		raw, ok := v[KeyID]
		if !ok || raw == nil {
			return "", false
		}
		return stringify(raw), true
	case string:
		return v, true
	default:
		return "", false
	}
}

// ValueOf extracts the "@value" of a tagged scalar. Bare scalars are accepted
// as their own value.
func ValueOf(typed any) (string, bool) {
	switch v := typed.(type) {
	case map[string]any:
		raw, ok := v[KeyValue]
		if !ok || raw == nil {
			return "", false
		}
		return stringify(raw), true
	case nil:
		return "", false
	case []any:
		return "", false
	default:
		return stringify(v), true
	}
}

// IsEmpty reports whether a wire value carries no user data: nil, an empty
// reference, an empty string value, or an empty sequence.
func IsEmpty(typed any) bool {
	switch v := typed.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		if id, ok := IDOf(v); ok {
			return strings.TrimSpace(id) == ""
		}
		if value, ok := ValueOf(v); ok {
			return strings.TrimSpace(value) == ""
		}
		return len(v) == 0
	default:
		return false
	}
}

func tagged(iri, value string) map[string]any {
	return map[string]any{KeyType: iri, KeyValue: value}
}

func isTrue(plain any) bool {
	switch v := plain.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
