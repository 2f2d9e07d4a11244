package testsupport

import (
	"context"

	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
)

// UnitTypeIRI is the value IRI of the codelist-backed unit field in the
// fixture schemas.
const UnitTypeIRI = "https://onerecord.iata.org/ns/coreCodeLists#UnitType"

// CompanyIRI scopes catalog lookups for the shipper reference.
const CompanyIRI = "https://onerecord.iata.org/ns/cargo#Company"

// PieceColumns is the top-level schema of the Piece fixture.
func PieceColumns() []schema.Column {
	return []schema.Column{
		{Name: "goodsDescription", Type: "string", Description: "General goods description"},
		{Name: "coload", Type: "boolean"},
		{Name: "slac", Type: "integer", Description: "Shipper's load and count"},
		{Name: "loadingDate", Type: "datetime"},
		{Name: "consignment", Type: "Consignment"},
		{Name: "shipper", Type: "Company", ValueIRI: CompanyIRI},
		{Name: "dimensions", Type: "Dimensions", SchemaType: schema.SchemaTypeEmbedded},
		{Name: "grossWeight", Type: "Value", SchemaType: schema.SchemaTypeEmbedded},
		{Name: "handlingInstructions", Type: "string", Array: true},
		{Name: "containedItems", Type: "Item", SchemaType: schema.SchemaTypeEmbedded, Array: true},
	}
}

// Documents returns the fixture schema documents.
func Documents() []schema.Document {
	return []schema.Document{
		schema.MustNewDocument(schema.ObjectKey("Piece"), PieceColumns()...),
		schema.MustNewDocument(schema.EmbeddedKey("Dimensions"),
			schema.Column{Name: "length", Type: "double"},
			schema.Column{Name: "width", Type: "double"},
			schema.Column{Name: "unit", Type: "UnitType", SchemaType: schema.SchemaTypeEnum, ValueIRI: UnitTypeIRI, Codelist: true},
		),
		schema.MustNewDocument(schema.EmbeddedKey("Value"),
			schema.Column{Name: "numericalValue", Type: "double"},
			schema.Column{Name: "unit", Type: "UnitType", SchemaType: schema.SchemaTypeEnum, ValueIRI: UnitTypeIRI, Codelist: true},
		),
		schema.MustNewDocument(schema.EmbeddedKey("Item"),
			schema.Column{Name: "itemQuantity", Type: "integer"},
			schema.Column{Name: "weight", Type: "Value", SchemaType: schema.SchemaTypeEmbedded},
		),
	}
}

// Store returns an in-memory schema store seeded with Documents.
func Store() *schema.MemoryStore {
	return schema.NewMemoryStore(Documents()...)
}

// Codelists returns the fixture codelist table.
func Codelists() options.Table {
	return options.NewTable(map[string][]options.Entry{
		"UnitType": {
			{ID: "KGM", Description: "Kilogram"},
			{ID: "CMT", Description: "Centimetre"},
			{ID: "MTR", Description: "Metre"},
		},
		"PackagingType": {
			{ID: "BX", Description: "Box"},
			{ID: "PL", Description: "Pallet"},
		},
	})
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
