package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func pathFields() []Field {
	return []Field{
		{Name: "goodsDescription", Kind: KindScalar},
		{Name: "pieces", Kind: KindEmbedded, Array: true, Children: []Field{
			{Name: "grossWeight", Kind: KindEmbedded, Children: []Field{
				{Name: "unit", Kind: KindReference},
			}},
		}},
		{Name: "dimensions", Kind: KindEmbedded, Children: []Field{
			{Name: "length", Kind: KindScalar},
		}},
	}
}

func TestLookup(t *testing.T) {
	fields := pathFields()
	cases := map[string]string{
		"goodsDescription":          "goodsDescription",
		"pieces":                    "pieces",
		"pieces.3.grossWeight.unit": "unit",
		"pieces.grossWeight":        "grossWeight",
		" dimensions . length ":     "length",
	}
	for path, want := range cases {
		field, ok := Lookup(fields, path)
		if !ok || field.Name != want {
			t.Fatalf("Lookup(%q) = %q, %v", path, field.Name, ok)
		}
	}
	for _, path := range []string{"", "nope", "dimensions.0.length", "goodsDescription.x", "0"} {
		if _, ok := Lookup(fields, path); ok {
			t.Fatalf("Lookup(%q) unexpectedly matched", path)
		}
	}
}

func TestWalk(t *testing.T) {
	var visited []string
	Walk(pathFields(), func(path string, field Field) bool {
		visited = append(visited, path)
		return field.Name != "dimensions"
	})
	want := []string{"goodsDescription", "pieces", "pieces.grossWeight", "pieces.grossWeight.unit", "dimensions"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitPathAndIndex(t *testing.T) {
	if diff := cmp.Diff([]string{"a", "1", "b"}, SplitPath("a..1.b.")); diff != "" {
		t.Fatalf("SplitPath mismatch (-want +got):\n%s", diff)
	}
	if idx, ok := IsIndex("12"); !ok || idx != 12 {
		t.Fatalf("IsIndex(12) = %d, %v", idx, ok)
	}
	if _, ok := IsIndex("-1"); ok {
		t.Fatalf("negative index accepted")
	}
}
