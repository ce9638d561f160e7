package sip

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURI(t *testing.T, raw string) SipUri {
	t.Helper()

	uri, err := parseSipUri(raw)
	require.NoError(t, err)

	return uri
}

func TestLocationStoreRegisterReturnsPreviousBinding(t *testing.T) {
	store := NewLocationStore()
	aor := AorFromURI(mustURI(t, "sip:alice@example.com"))

	c1 := mustURI(t, "sip:alice@192.0.2.1:5060")
	c2 := mustURI(t, "sip:alice@192.0.2.2:5060")

	_, had := store.Register(aor, c1)
	assert.False(t, had)

	previous, had := store.Register(aor, c2)
	require.True(t, had)
	assert.Equal(t, c1, previous)

	current, ok := store.Lookup(aor)
	require.True(t, ok)
	assert.Equal(t, c2, current)
}

func TestAorHostComparisonIsCaseInsensitiveUserInfoIsNot(t *testing.T) {
	store := NewLocationStore()

	lower := AorFromURI(mustURI(t, "sip:Alice@Example.com"))
	mixed := AorFromURI(mustURI(t, "sip:Alice@EXAMPLE.COM"))
	differentUser := AorFromURI(mustURI(t, "sip:alice@Example.com"))

	store.Register(lower, mustURI(t, "sip:alice@192.0.2.1"))

	_, ok := store.Lookup(mixed)
	assert.True(t, ok, "host comparison must be case-insensitive")

	_, ok = store.Lookup(differentUser)
	assert.False(t, ok, "userinfo comparison must be case-sensitive")
}

func TestLocationStoreConcurrentRegisterIsLinearizablePerAor(t *testing.T) {
	store := NewLocationStore()
	aor := AorFromURI(mustURI(t, "sip:alice@example.com"))

	const writers = 50

	contact := mustURI(t, "sip:alice@192.0.2.1")

	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			store.Register(aor, contact)
		}()
	}

	wg.Wait()

	_, ok := store.Lookup(aor)
	assert.True(t, ok)
}
