package config

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/siteconfig/internal/foundation/errors"
)

// FieldKey is the error context key holding the offending field path.
const FieldKey = "field"

// invalidField builds the ConfigValidationError for a single field. The message
// always starts with the field path so it is visible without verbose output.
func invalidField(field, format string, args ...any) error {
	return ferrors.ValidationError(field+" "+fmt.Sprintf(format, args...)).
		WithContext(FieldKey, field).
		Build()
}

// IsValidationError reports whether err (or anything it wraps) is a
// configuration validation failure.
func IsValidationError(err error) bool {
	return ferrors.HasCategory(err, ferrors.CategoryValidation)
}

// FieldOf returns the field path named by a validation error.
func FieldOf(err error) (string, bool) {
	if !IsValidationError(err) {
		return "", false
	}
	return ferrors.ContextString(err, FieldKey)
}
