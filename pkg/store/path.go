package store

import (
	"fmt"

	"github.com/goliatone/go-loform/pkg/model"
	"github.com/goliatone/go-loform/pkg/typed"
)

// leafFunc computes the new wire value stored at the end of a path. index is
// the array element addressed by the final segment, or -1.
type leafFunc func(existing any, field model.Field, index int) (any, error)

// put walks segments through node following the descriptor tree, creating
// embedded maps as needed, and stores the result of leaf at the final segment.
// An element index may address an existing element or the slot just past the
// end. Every embedded map on the way is stamped with its declared type. node
// is only written once everything below it succeeded.
func put(node map[string]any, level []model.Field, segments []string, leaf leafFunc) error {
	name := segments[0]
	field, ok := findField(level, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	if len(segments) == 1 {
		value, err := leaf(node[name], field, -1)
		if err != nil {
			return err
		}
		node[name] = value
		return nil
	}

	if idx, isIndex := model.IsIndex(segments[1]); isIndex {
		if !field.Array {
			return fmt.Errorf("%w: %s", ErrNotArray, name)
		}
		seq, _ := typed.AsSlice(node[name])
		switch {
		case idx > len(seq):
			return fmt.Errorf("%w: %s.%d (length %d)", ErrIndexOutOfRange, name, idx, len(seq))
		case idx == len(seq):
			seq = append(seq, nil)
		}
		if len(segments) == 2 {
			value, err := leaf(seq[idx], field, idx)
			if err != nil {
				return err
			}
			seq[idx] = value
			node[name] = seq
			return nil
		}
		if field.Kind != model.KindEmbedded {
			return fmt.Errorf("%w: %s", ErrUnknownField, segments[2])
		}
		elem := stamp(seq[idx], field)
		if err := put(elem, field.Children, segments[2:], leaf); err != nil {
			return err
		}
		seq[idx] = elem
		node[name] = seq
		return nil
	}

	if field.Kind != model.KindEmbedded {
		return fmt.Errorf("%w: %s", ErrUnknownField, segments[1])
	}
	child := stamp(node[name], field)
	if err := put(child, field.Children, segments[1:], leaf); err != nil {
		return err
	}
	node[name] = child
	return nil
}

// stamp returns a shallow copy of existing carrying field's "@type", or a
// fresh map when existing is not a map. The record keeps the original until
// the caller stores the copy.
func stamp(existing any, field model.Field) map[string]any {
	src, _ := existing.(map[string]any)
	m := make(map[string]any, len(src)+1)
	for key, value := range src {
		m[key] = value
	}
	m[typed.KeyType] = field.Type
	return m
}

// merge applies patch to the embedded value existing: listed children are
// replaced (encoded per their descriptor), siblings are kept.
func merge(existing any, field model.Field, patch any) (map[string]any, error) {
	values, ok := patch.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, field.Name)
	}
	target := stamp(existing, field)
	for key, value := range values {
		if key == typed.KeyType {
			continue
		}
		child, ok := findField(field.Children, key)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, field.Name, key)
		}
		encoded, err := encodeValue(target[key], child, value)
		if err != nil {
			return nil, err
		}
		target[key] = encoded
	}
	return target, nil
}

// encodeValue converts a caller value for a whole field into wire form.
func encodeValue(existing any, field model.Field, raw any) (any, error) {
	switch {
	case field.Array:
		if raw == nil {
			return []any{}, nil
		}
		seq, ok := typed.AsSlice(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotSequence, field.Name)
		}
		return deepCopy(seq), nil
	default:
		return encodeElement(existing, field, raw)
	}
}

// encodeElement converts a single value (a whole non-array field or one array
// element) into wire form.
func encodeElement(existing any, field model.Field, raw any) (any, error) {
	if field.Kind == model.KindEmbedded {
		return merge(existing, field, raw)
	}
	if isWire(raw) {
		return deepCopy(raw), nil
	}
	return typed.Encode(raw, field.CodecKind()), nil
}

// isWire reports whether value is already a reference or tagged scalar.
func isWire(value any) bool {
	m, ok := value.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := m[typed.KeyID]; ok {
		return true
	}
	_, ok = m[typed.KeyValue]
	return ok
}

func findField(fields []model.Field, name string) (model.Field, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
	}
	return model.Field{}, false
}

func getPath(root map[string]any, segments []string) (any, bool) {
	if root == nil || len(segments) == 0 {
		return nil, false
	}
	current := any(root)
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, ok := model.IsIndex(segment)
			if !ok || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(v))
		for k, item := range v {
			clone[k] = deepCopy(item)
		}
		return clone
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = deepCopy(item)
		}
		return clone
	case []map[string]any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = deepCopy(item)
		}
		return clone
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}
