package sip

import (
	"strings"
	"sync"
)

// Aor is a normalized Address-of-Record key (spec §4.5 "Registrar"):
// host comparison is case-insensitive, userinfo comparison is
// case-sensitive.
type Aor struct {
	UserInfo string
	Host     string
}

// AorFromURI normalizes a SipUri into its registrar key.
func AorFromURI(uri SipUri) Aor {
	return Aor{UserInfo: uri.UserInfo, Host: strings.ToLower(uri.Host)}
}

// ContactUri is the reachable address a registrar binds an Aor to.
type ContactUri = SipUri

// LocationStore is an in-memory, volatile Aor -> ContactUri map (spec
// §4.5: "no TTL enforcement at this layer; expiry is the caller's
// responsibility"). It is implemented over sync.Map, matching the
// concurrent-map idiom already used for this module's buffer pool and
// basic cache, giving per-key linearizable Register/Lookup with no
// cross-key ordering guarantee.
type LocationStore struct {
	bindings sync.Map // Aor -> ContactUri
}

// NewLocationStore returns an empty store.
func NewLocationStore() *LocationStore {
	return &LocationStore{}
}

// Register binds aor to contact, returning the previous binding if
// one existed (spec example: "register(aor, c1); register(aor, c2);
// lookup(aor) == Some(c2)" with the second register returning
// Some(c1)).
func (s *LocationStore) Register(aor Aor, contact ContactUri) (previous ContactUri, had bool) {
	old, loaded := s.bindings.Swap(aor, contact)
	if !loaded {
		return ContactUri{}, false
	}

	return old.(ContactUri), true
}

// Lookup returns the contact currently bound to aor, if any.
func (s *LocationStore) Lookup(aor Aor) (ContactUri, bool) {
	value, ok := s.bindings.Load(aor)
	if !ok {
		return ContactUri{}, false
	}

	return value.(ContactUri), true
}

// Unregister removes aor's binding, returning the contact that was
// bound, if any.
func (s *LocationStore) Unregister(aor Aor) (ContactUri, bool) {
	value, loaded := s.bindings.LoadAndDelete(aor)
	if !loaded {
		return ContactUri{}, false
	}

	return value.(ContactUri), true
}
