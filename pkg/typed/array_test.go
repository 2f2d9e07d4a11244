package typed

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArrayHelpers(t *testing.T) {
	seq := EncodeAll([]any{"a", "b"}, KindReference)
	seq = InsertAt(seq, 1, Encode("x", KindReference))
	seq = Append(seq, Encode("z", KindReference))
	seq = RemoveAt(seq, 0)

	got := DecodeAll(seq, KindReference)
	if diff := cmp.Diff([]any{"x", "b", "z"}, got); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}

	if got := InsertAt(nil, 5, "only"); len(got) != 1 {
		t.Fatalf("insert past end should append: %v", got)
	}
	if got := InsertAt([]any{"b"}, -3, "a"); got[0] != "a" {
		t.Fatalf("negative index should insert at front: %v", got)
	}
	if got := RemoveAt([]any{"a"}, 4); len(got) != 1 {
		t.Fatalf("out of range removal changed sequence: %v", got)
	}
}

func TestDecodeAllShapes(t *testing.T) {
	if got := DecodeAll(nil, KindString); len(got) != 0 {
		t.Fatalf("nil should decode to empty: %v", got)
	}
	single := DecodeAll(map[string]any{KeyID: "one"}, KindReference)
	if diff := cmp.Diff([]any{"one"}, single); diff != "" {
		t.Fatalf("single value mismatch (-want +got):\n%s", diff)
	}
	typedMaps := []map[string]any{tagged(XSDInteger, "1"), tagged(XSDInteger, "2")}
	if diff := cmp.Diff([]any{int64(1), int64(2)}, DecodeAll(typedMaps, KindInteger)); diff != "" {
		t.Fatalf("map slice mismatch (-want +got):\n%s", diff)
	}
}
