package common

import "errors"

var (
	ErrClosed   = errors.New("store closed")
	ErrKeyEmpty = errors.New("key cannot be empty")

	// ErrKeyEncoding is returned for keys that are not valid UTF-8 and
	// therefore cannot survive a JSON encode/decode round trip intact.
	ErrKeyEncoding = errors.New("key is not valid UTF-8")

	// ErrReservedKey is returned when a user key collides with the
	// tombstone marker field of the log format.
	ErrReservedKey = errors.New("key is reserved by the log format")

	// ErrCorruptRecord is returned when a log line fails to decode.
	ErrCorruptRecord = errors.New("corrupt log record")
)
