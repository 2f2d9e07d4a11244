// Package options resolves the selectable values of reference fields.
//
// Fields flagged as codelists draw their candidates from an injected, read-only
// Table keyed by the fragment of the field's value IRI; all other reference
// fields ask a Catalog service for instances of the referenced type. Loads are
// lazy and never fail hard: lookup errors are logged, reported to the
// configured hook, and resolve to an empty option list. State tracks whether a
// field's current value is missing from its options so renderers can switch to
// free-text entry.
package options
