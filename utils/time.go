// Package utils provides utility functions for the application.
package utils

import "time"

// UTCNow returns the current wall-clock time in UTC. All persisted
// timestamps go through this so rows compare across timezones.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns the current UTC time as a pointer, for nullable columns.
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time shifted by d.
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// IsExpired reports whether t lies in the past.
func IsExpired(t time.Time) bool {
	return UTCNow().After(t)
}
