package kv

// KeyVal is a key-value store.
type KeyVal interface {
	// Open opens a key-value store.
	Open() error

	// Close closes a key-value store.
	Close() error

	// GetValue returns a value for a key. If the key does not exist, the
	// value is nil.
	GetValue(key []byte) ([]byte, error)

	// SetValue saves a key-value pair.
	SetValue(key, val []byte) error
}
