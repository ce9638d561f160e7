package cache

import "time"

// Cache is a generic, optionally-expiring key/value store. An expiration
// of 0 on Add/Update means the entry never expires on its own; callers
// that need bounded lifetimes (e.g. a registrar binding) pass a non-zero
// duration and rely on the implementation's background sweep to evict it.
type Cache[K any, V any] interface {
	// Add stores value under key, expiring it after expiration (0 disables
	// expiry). Returns false on failure.
	Add(key K, value V, expiration time.Duration) bool

	// Get returns the value stored under key, if present and unexpired.
	Get(key K) (V, bool)

	// Update replaces the value stored under key, optionally refreshing
	// its expiry. Returns false if key is not present.
	Update(key K, newValue V, expiration time.Duration) bool

	// Exists reports whether key currently has a live entry.
	Exists(key K) bool

	// Keys returns a snapshot of all live keys.
	Keys() []K

	// Delete removes key's entry. Returns true if it no longer exists
	// afterward (including if it was already absent).
	Delete(key K) bool
}
