// Package utils provides utility functions for the application.
package utils

// ToPtr returns a pointer to v, for filling optional struct fields inline.
func ToPtr[T any](v T) *T {
	return &v
}

// IsTrue treats a nil *bool as false.
func IsTrue(b *bool) bool {
	return b != nil && *b
}
