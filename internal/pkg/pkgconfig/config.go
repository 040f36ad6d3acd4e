package pkgconfig

import "time"

// Config is the read-only view over configuration used by the application.
// Keys are dotted paths such as "fluig.prd.base_url".
type Config interface {
	GetInt(key string) int64
	GetBool(key string) bool
	GetString(key string) string
	GetDuration(key string) time.Duration
	GetArray(key string) []string
	Close() error
}
