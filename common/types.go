package common

// Store is the interface both persistence engines implement
type Store interface {
	// Set associates value with key, overwriting any existing value.
	// The value must be JSON-serializable.
	Set(key string, value any) error

	// Get reads the current value for key into out (out may be nil to
	// only test presence). The bool reports whether the key exists.
	Get(key string, out any) (bool, error)

	// Remove deletes a key. The bool reports whether it existed.
	Remove(key string) (bool, error)

	// Keys returns all live keys in sorted order.
	Keys() []string

	// Purge removes every key and resets the backing file.
	Purge() error

	// Flush forces all accepted writes to disk.
	Flush() error

	// Close flushes and releases the store.
	Close() error

	// Stats returns engine statistics
	Stats() Stats
}

// Stats contains engine statistics
type Stats struct {
	NumKeys   int64
	Buffered  int // records accepted but not yet flushed
	DiskBytes int64

	FlushCount   int64
	CompactCount int64
}
