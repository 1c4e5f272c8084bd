package ports

import (
	"time"

	"github.com/bft-labs/stereosync/pkg/log"
)

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// String creates a string field.
func String(key, value string) Field { return log.String(key, value) }

// Int creates an int field.
func Int(key string, value int) Field { return log.Int(key, value) }

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field { return log.Uint64(key, value) }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return log.Float64(key, value) }

// Bool creates a bool field.
func Bool(key string, value bool) Field { return log.Bool(key, value) }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return log.Duration(key, value) }

// Time creates a time field.
func Time(key string, value time.Time) Field { return log.Time(key, value) }

// Err creates an error field with key "error".
func Err(err error) Field { return log.Err(err) }

// Seconds creates a field holding d in fractional seconds.
func Seconds(key string, d time.Duration) Field { return log.Seconds(key, d) }
