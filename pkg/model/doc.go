// Package model defines the field descriptor tree consumed by form renderers.
// Descriptors are produced by a Resolver from column-oriented schema documents:
// each column becomes a scalar, a reference (codelist enumeration or object
// reference) or an embedded fieldset whose children are resolved recursively.
// Array cardinality is carried on the descriptor; how arrays are edited is left
// to the value store. Descriptors are immutable once returned and resolution
// is deterministic for a given store content.
package model
