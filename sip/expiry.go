package sip

import (
	"context"
	"time"

	"github.com/ezex-io/spark/cache"
)

// ExpiringLocationStore layers an optional TTL over a LocationStore (spec
// §4.5: "no TTL enforcement at this layer; expiry is the caller's
// responsibility"). Callers that want REGISTER's Expires/Contact-expires
// semantics enforced wrap a *LocationStore with this rather than reaching
// into LocationStore itself, keeping the volatile map free of any clock
// dependency.
type ExpiringLocationStore struct {
	store  *LocationStore
	expiry cache.Cache[Aor, ContactUri]
}

// NewExpiringLocationStore returns a store that forgets a binding once its
// registration interval elapses, sweeping expired entries every
// cleanupInterval.
func NewExpiringLocationStore(ctx context.Context, cleanupInterval time.Duration) *ExpiringLocationStore {
	return &ExpiringLocationStore{
		store:  NewLocationStore(),
		expiry: cache.NewBasic[Aor, ContactUri](ctx, cache.WithCleanUpInterval(cleanupInterval)),
	}
}

// Register binds aor to contact for ttl (0 means "never expires on its
// own"), returning the previous binding as LocationStore.Register does.
func (s *ExpiringLocationStore) Register(aor Aor, contact ContactUri, ttl time.Duration) (ContactUri, bool) {
	previous, had := s.store.Register(aor, contact)
	s.expiry.Add(aor, contact, ttl)

	return previous, had
}

// Lookup returns the contact bound to aor, if the binding has neither
// been explicitly unregistered nor expired.
func (s *ExpiringLocationStore) Lookup(aor Aor) (ContactUri, bool) {
	if _, live := s.expiry.Get(aor); !live {
		s.store.Unregister(aor)

		return ContactUri{}, false
	}

	return s.store.Lookup(aor)
}

// Unregister removes aor's binding immediately, independent of its TTL.
func (s *ExpiringLocationStore) Unregister(aor Aor) (ContactUri, bool) {
	s.expiry.Delete(aor)

	return s.store.Unregister(aor)
}
