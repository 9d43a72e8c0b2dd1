package assessment

import "time"

// timeNow is swapped in tests. Run timestamps are always UTC.
var timeNow = func() time.Time { return time.Now().UTC() }
