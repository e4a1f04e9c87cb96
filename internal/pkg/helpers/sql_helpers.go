package helpers

import "time"

// NullableString returns nil for empty strings so optional columns store
// NULL instead of "".
func NullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// NullableTime returns nil for zero times.
func NullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// NullableInt64 returns nil for nil pointers, the value otherwise.
func NullableInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// StringOrDefault dereferences a string pointer with a fallback.
func StringOrDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }

// TimePtr returns a pointer to v.
func TimePtr(v time.Time) *time.Time { return &v }
