// Package types defines the record base, capability traits, field registry,
// request structs, and standard error types for the Strata persistence layer.
package types
