package types

import "time"

// windowSuffix is appended verbatim to both window bounds. It is the
// URL-encoded form of "+0000", not a computed offset.
const windowSuffix = "%2B0000"

const windowLayout = "2006-01-02T15:04:05"

// TimeWindow scopes an issue search to one analysis run
type TimeWindow struct {
	After  time.Time
	Before time.Time
}

// CreatedAfter returns the lower bound ready to be placed in a query string
func (w TimeWindow) CreatedAfter() string {
	return w.After.Format(windowLayout) + windowSuffix
}

// CreatedBefore returns the upper bound ready to be placed in a query string
func (w TimeWindow) CreatedBefore() string {
	return w.Before.Format(windowLayout) + windowSuffix
}

// Inverted reports whether the window has no room for any issue
func (w TimeWindow) Inverted() bool {
	return !w.After.Before(w.Before)
}
