package schema

import "strings"

const (
	// CategoryObject groups top-level logistics object schemas.
	CategoryObject = "logisticsObjects"
	// CategoryEmbedded groups embedded fieldset schemas.
	CategoryEmbedded = "embedded"
)

// Key builds the composite `<category>.<typeName>` identifier used to address
// schema documents.
func Key(category, typeName string) string {
	category = strings.TrimSpace(category)
	typeName = strings.TrimSpace(typeName)
	if category == "" {
		return typeName
	}
	return category + "." + typeName
}

// ObjectKey addresses the schema of a top-level logistics object.
func ObjectKey(typeName string) string {
	return Key(CategoryObject, typeName)
}

// EmbeddedKey addresses the schema of an embedded fieldset.
func EmbeddedKey(typeName string) string {
	return Key(CategoryEmbedded, typeName)
}

// SplitKey separates a composite identifier into category and type name. Ids
// without a category yield an empty category.
func SplitKey(id string) (category, typeName string) {
	id = strings.TrimSpace(id)
	idx := strings.Index(id, ".")
	if idx < 0 {
		return "", id
	}
	return id[:idx], id[idx+1:]
}
