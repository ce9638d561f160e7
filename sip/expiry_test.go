package sip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiringLocationStore_LookupAfterRegister(t *testing.T) {
	store := NewExpiringLocationStore(context.Background(), time.Hour)

	aor := Aor{UserInfo: "alice", Host: "example.com"}
	contact := ContactUri{Scheme: SchemeSip, Host: "192.0.2.1", Port: 5060, HasPort: true}

	_, had := store.Register(aor, contact, 0)
	require.False(t, had)

	got, ok := store.Lookup(aor)
	require.True(t, ok)
	assert.Equal(t, contact, got)
}

func TestExpiringLocationStore_LookupAfterTTLExpires(t *testing.T) {
	store := NewExpiringLocationStore(context.Background(), time.Hour)

	aor := Aor{UserInfo: "bob", Host: "example.com"}
	contact := ContactUri{Scheme: SchemeSip, Host: "192.0.2.2", Port: 5060, HasPort: true}

	store.Register(aor, contact, time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, ok := store.Lookup(aor)
	assert.False(t, ok)
}

func TestExpiringLocationStore_UnregisterRemovesImmediately(t *testing.T) {
	store := NewExpiringLocationStore(context.Background(), time.Hour)

	aor := Aor{UserInfo: "carol", Host: "example.com"}
	contact := ContactUri{Scheme: SchemeSip, Host: "192.0.2.3", Port: 5060, HasPort: true}

	store.Register(aor, contact, time.Hour)
	_, had := store.Unregister(aor)
	require.True(t, had)

	_, ok := store.Lookup(aor)
	assert.False(t, ok)
}
