package schemastore

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
)

const cargoSpec = `
openapi: 3.0.3
info:
  title: cargo
  version: "1.0"
paths: {}
components:
  schemas:
    Piece:
      type: object
      x-schema-category: logisticsObjects
      properties:
        goodsDescription:
          type: string
          description: <b>General</b> goods description
        slac:
          type: integer
        coload:
          type: boolean
        loadingDate:
          type: string
          format: date-time
        dimensions:
          $ref: '#/components/schemas/Dimensions'
        shipper:
          allOf:
            - $ref: '#/components/schemas/Company'
          x-schema-type: Plain
          x-value-iri: https://onerecord.iata.org/ns/cargo#Company
        handlingInstructions:
          type: array
          items:
            type: string
        packaging:
          type: string
          enum: [BX, PL]
          x-codelist: PackagingType
        extra:
          type: object
    Dimensions:
      type: object
      x-schema-category: embedded
      properties:
        length:
          type: number
        unit:
          type: string
          x-value-iri: https://onerecord.iata.org/ns/coreCodeLists#UnitType
          x-codelist: UnitType
    Company:
      type: object
      properties:
        name:
          type: string
`

func TestOpenAPIStore(t *testing.T) {
	store, err := LoadOpenAPIFile(context.Background(), fstest.MapFS{"cargo.yaml": {Data: []byte(cargoSpec)}}, "cargo.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{
		"embedded.Company",
		"embedded.Dimensions",
		"logisticsObjects.Company",
		"logisticsObjects.Piece",
	}
	if diff := cmp.Diff(want, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	piece, err := store.Load(context.Background(), "logisticsObjects.Piece")
	if err != nil {
		t.Fatalf("load Piece: %v", err)
	}
	wantColumns := []schema.Column{
		{Name: "goodsDescription", Type: "string", Description: "<b>General</b> goods description"},
		{Name: "slac", Type: "integer"},
		{Name: "coload", Type: "boolean"},
		{Name: "loadingDate", Type: "datetime"},
		{Name: "dimensions", Type: "Dimensions", SchemaType: schema.SchemaTypeEmbedded},
		{Name: "shipper", Type: "Company", SchemaType: schema.SchemaTypePlain, ValueIRI: "https://onerecord.iata.org/ns/cargo#Company"},
		{Name: "handlingInstructions", Type: "string", Array: true},
		{Name: "packaging", Type: "PackagingType", SchemaType: schema.SchemaTypeEnum, Codelist: true, ValueIRI: "#PackagingType"},
	}
	if diff := cmp.Diff(wantColumns, piece.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}

	dims, err := store.Load(context.Background(), "embedded.Dimensions")
	if err != nil {
		t.Fatalf("load Dimensions: %v", err)
	}
	unit := dims.Columns[1]
	if unit.SchemaType != schema.SchemaTypeEnum || !unit.Codelist || options.CodelistKey(unit.ValueIRI) != "UnitType" {
		t.Fatalf("unexpected unit column: %+v", unit)
	}
	if _, err := store.Load(context.Background(), "logisticsObjects.Dimensions"); !errors.Is(err, schema.ErrNotFound) {
		t.Fatalf("category restriction ignored: %v", err)
	}

	entries, ok := store.Codelists().Lookup("PackagingType")
	if !ok || len(entries) != 2 || entries[0].ID != "BX" {
		t.Fatalf("enum codelist not collected: %+v", entries)
	}
}

func TestOpenAPIStore_Errors(t *testing.T) {
	if _, err := NewOpenAPIStore(context.Background(), nil); err == nil {
		t.Fatalf("empty payload accepted")
	}
	noSchemas := []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n")
	if _, err := NewOpenAPIStore(context.Background(), noSchemas); err == nil {
		t.Fatalf("document without schemas accepted")
	}
	if _, err := LoadOpenAPIFile(context.Background(), fstest.MapFS{}, "missing.yaml"); err == nil {
		t.Fatalf("missing file accepted")
	}
}
