// Package errors provides the classified error primitives used across siteconfig.
//
// Every failure the loader can produce is a ClassifiedError: a category (config,
// validation, filesystem, internal), a severity, a message and a structured
// context. Nothing is retried. Configuration validation failures carry the
// offending field path under the "field" context key.
//
// Example usage:
//
//	err := errors.ValidationError("siteMetadata.siteUrl is required").
//		WithContext("field", "siteMetadata.siteUrl").
//		Build()
package errors
