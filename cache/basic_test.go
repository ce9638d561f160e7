package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicCache_AddAndGet(t *testing.T) {
	c := NewBasic[string, int](context.Background())

	require.True(t, c.Add("a", 1, 0))

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestBasicCache_GetMissing(t *testing.T) {
	c := NewBasic[string, int](context.Background())

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestBasicCache_GetExpiredEntryIsInvisibleBeforeSweep(t *testing.T) {
	c := NewBasic[string, int](context.Background(), WithCleanUpInterval(time.Hour))

	c.Add("a", 1, time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok, "Get must honor expiry even before the periodic sweep runs")
}

func TestBasicCache_UpdateRefreshesValue(t *testing.T) {
	c := NewBasic[string, int](context.Background())

	c.Add("a", 1, 0)
	require.True(t, c.Update("a", 2, 0))

	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
}

func TestBasicCache_UpdateMissingKeyFails(t *testing.T) {
	c := NewBasic[string, int](context.Background())

	assert.False(t, c.Update("missing", 2, 0))
}

func TestBasicCache_DeleteRemovesEntry(t *testing.T) {
	c := NewBasic[string, int](context.Background())

	c.Add("a", 1, 0)
	require.True(t, c.Delete("a"))

	assert.False(t, c.Exists("a"))
}

func TestBasicCache_KeysListsLiveEntries(t *testing.T) {
	c := NewBasic[string, int](context.Background())

	c.Add("a", 1, 0)
	c.Add("b", 2, 0)

	assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
}
