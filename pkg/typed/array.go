package typed

// EncodeAll encodes each element of values individually.
func EncodeAll(values []any, kind Kind) []any {
	if values == nil {
		return nil
	}
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = Encode(value, kind)
	}
	return out
}

// DecodeAll decodes a wire sequence element-wise. A single non-sequence value
// is treated as a one-element sequence; nil yields an empty slice.
func DecodeAll(seq any, kind Kind) []any {
	items, ok := AsSlice(seq)
	if !ok {
		if seq == nil {
			return []any{}
		}
		items = []any{seq}
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = Decode(item, kind)
	}
	return out
}

// AsSlice normalises the sequence shapes produced by JSON decoding and by Go
// callers into []any.
func AsSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// InsertAt returns a new sequence with value inserted before index. Indexes
// past the end append; negative indexes insert at the front.
func InsertAt(seq []any, index int, value any) []any {
	if index < 0 {
		index = 0
	}
	if index > len(seq) {
		index = len(seq)
	}
	out := make([]any, 0, len(seq)+1)
	out = append(out, seq[:index]...)
	out = append(out, value)
	out = append(out, seq[index:]...)
	return out
}

// RemoveAt returns a new sequence without the element at index. Out-of-range
// indexes return an unchanged copy.
func RemoveAt(seq []any, index int) []any {
	out := make([]any, 0, len(seq))
	for i, item := range seq {
		if i == index {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Append returns a new sequence with value added at the end.
func Append(seq []any, value any) []any {
	return InsertAt(seq, len(seq), value)
}
