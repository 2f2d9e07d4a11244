package schema

import (
	"context"
	"errors"
	"testing"
)

func TestChain_Load(t *testing.T) {
	first := NewMemoryStore(MustNewDocument(ObjectKey("Piece"), Column{Name: "slac", Type: "integer"}))
	second := NewMemoryStore(
		MustNewDocument(ObjectKey("Piece"), Column{Name: "other", Type: "string"}),
		MustNewDocument(EmbeddedKey("Value"), Column{Name: "unit", Type: "string"}),
	)
	broken := StoreFunc(func(ctx context.Context, id string) (Document, error) {
		return Document{}, ErrMalformed
	})
	ctx := context.Background()

	doc, err := Chain{first, nil, second}.Load(ctx, ObjectKey("Piece"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Columns[0].Name != "slac" {
		t.Fatalf("expected first store to win, got %+v", doc.Columns)
	}

	if _, err := (Chain{first, second}).Load(ctx, EmbeddedKey("Value")); err != nil {
		t.Fatalf("fallthrough load: %v", err)
	}
	if _, err := (Chain{first, second}).Load(ctx, EmbeddedKey("Missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := (Chain{broken, second}).Load(ctx, EmbeddedKey("Value")); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected chain to stop on ErrMalformed, got %v", err)
	}
}
