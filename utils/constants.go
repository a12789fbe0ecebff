// File: utils/constants.go
package utils

import "time"

// SessionCachePrefix is the prefix used for Redis session snapshot cache keys.
const SessionCachePrefix = "session:"

// SessionCacheTTL is the time-to-live for session snapshot cache entries.
const SessionCacheTTL = 5 * time.Minute
