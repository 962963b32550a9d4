// Package ptr builds the pointer fields used by partial updates.
package ptr

import (
	"time"

	"github.com/agentstation/utc"
)

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// String creates a pointer to the given string value.
func String(s string) *string {
	return &s
}

// Int creates a pointer to the given int value.
func Int(i int) *int {
	return &i
}

// Float64 creates a pointer to the given float64 value.
func Float64(f float64) *float64 {
	return &f
}

// Time wraps t as a UTC timestamp pointer.
func Time(t time.Time) *utc.Time {
	return &utc.Time{Time: t.UTC()}
}

// Deref returns the pointed-to value, or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
