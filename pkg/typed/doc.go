// Package typed implements the wire encoding for logistics object values.
//
// References travel as {"@id": "..."} and scalars as
// {"@type": <XSD IRI>, "@value": "<string>"}. Encode and Decode convert between
// that form and the plain values editors work with; both operate on single
// scalars and leave array and embedded-object composition to callers (see the
// element helpers in array.go). Neither direction fails: values that cannot be
// coerced encode to the "NaN" sentinel and malformed wire values decode to the
// zero value of their kind.
package typed
