package store

import "time"

// timeNow is a package-level variable for testability.
// Stored timestamps are always UTC.
var timeNow = func() time.Time { return time.Now().UTC() }
