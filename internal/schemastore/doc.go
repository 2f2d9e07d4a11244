// Package schemastore provides schema.Store implementations backed by a
// directory tree, an OpenAPI document, and an HTTP endpoint.
package schemastore
