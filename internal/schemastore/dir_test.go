package schemastore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-loform/pkg/schema"
)

func TestDirStore_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"logisticsObjects/Piece.yaml": {Data: []byte("- name: goodsDescription\n  type: string\n- name: dimensions\n  type: Dimensions\n  schemaType: Embedded\n")},
		"embedded/Dimensions.json":    {Data: []byte(`[{"name": "length", "type": "double"}]`)},
		"embedded/Broken.yml":         {Data: []byte("columns: [unclosed")},
	}
	store := NewDirStore(fsys)
	ctx := context.Background()

	doc, err := store.Load(ctx, "logisticsObjects.Piece")
	if err != nil {
		t.Fatalf("load Piece: %v", err)
	}
	if len(doc.Columns) != 2 || doc.Columns[1].SchemaType != schema.SchemaTypeEmbedded {
		t.Fatalf("unexpected columns: %+v", doc.Columns)
	}
	if !store.Cached("logisticsObjects.Piece") {
		t.Fatalf("document not cached")
	}

	if _, err := store.Load(ctx, "embedded.Dimensions"); err != nil {
		t.Fatalf("load Dimensions: %v", err)
	}
	if _, err := store.Load(ctx, "embedded.Missing"); !errors.Is(err, schema.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Load(ctx, "embedded.Broken"); !errors.Is(err, schema.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	store.Invalidate("logisticsObjects.Piece")
	if store.Cached("logisticsObjects.Piece") {
		t.Fatalf("invalidate kept the cache entry")
	}
	store.InvalidateAll()
	if store.Cached("embedded.Dimensions") {
		t.Fatalf("invalidate all kept the cache entry")
	}
}

func TestDocumentID(t *testing.T) {
	root := filepath.Join("srv", "schemas")
	cases := map[string]string{
		filepath.Join(root, "embedded", "Value.yaml"):         "embedded.Value",
		filepath.Join(root, "logisticsObjects", "Piece.JSON"): "logisticsObjects.Piece",
	}
	for name, want := range cases {
		if got, ok := documentID(root, name); !ok || got != want {
			t.Fatalf("documentID(%q) = %q, %v", name, got, ok)
		}
	}
	for _, name := range []string{
		filepath.Join(root, "Piece.yaml"),
		filepath.Join(root, "embedded", "notes.txt"),
		filepath.Join(root, "embedded", "deep", "Value.yaml"),
	} {
		if _, ok := documentID(root, name); ok {
			t.Fatalf("documentID(%q) matched", name)
		}
	}
}

func TestDirStore_WatchInvalidates(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "embedded")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := filepath.Join(dir, "Value.yaml")
	if err := os.WriteFile(file, []byte("- name: numericalValue\n  type: double\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	changed := make(chan string, 8)
	store := NewDirStore(os.DirFS(root), WithChangeHook(func(id string) {
		select {
		case changed <- id:
		default:
		}
	}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := store.Load(ctx, "embedded.Value"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.Watch(ctx, root); err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.WriteFile(file, []byte("- name: numericalValue\n  type: double\n- name: unit\n  type: string\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case id := <-changed:
		if id != "embedded.Value" {
			t.Fatalf("changed id = %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change observed")
	}

	doc, err := store.Load(ctx, "embedded.Value")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(doc.Columns) != 2 {
		t.Fatalf("stale document served: %+v", doc.Columns)
	}
}

func TestDirStore_IDs(t *testing.T) {
	fsys := fstest.MapFS{
		"logisticsObjects/Piece.yaml":  {Data: []byte("[]")},
		"logisticsObjects/Piece.json":  {Data: []byte("[]")},
		"logisticsObjects/README.md":   {Data: []byte("notes")},
		"embedded/Value.YML":           {Data: []byte("[]")},
		"embedded/nested/Ignored.yaml": {Data: []byte("[]")},
		"other/Shipment.yaml":          {Data: []byte("[]")},
	}

	ids, err := NewDirStore(fsys).IDs()
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	want := []string{"embedded.Value", "logisticsObjects.Piece"}
	if len(ids) != len(want) || ids[0] != want[0] || ids[1] != want[1] {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
}
