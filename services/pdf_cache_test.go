package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPDFCache_SaveAndGet(t *testing.T) {
	cache := NewPDFCache(time.Minute)
	orderID := uuid.New()

	_, ok := cache.Get(orderID)
	require.False(t, ok)

	cache.Save(orderID, []byte("%PDF-1.4 fake"))
	data, ok := cache.Get(orderID)
	require.True(t, ok)
	require.Equal(t, []byte("%PDF-1.4 fake"), data)

	// A different order never sees another order's PDF.
	_, ok = cache.Get(uuid.New())
	require.False(t, ok)
}

func TestPDFCache_Invalidate(t *testing.T) {
	cache := NewPDFCache(time.Minute)
	orderID := uuid.New()

	cache.Save(orderID, []byte("labels"))
	cache.Invalidate(orderID)

	_, ok := cache.Get(orderID)
	require.False(t, ok)
}

func TestPDFCache_ExpiredEntriesAreMisses(t *testing.T) {
	cache := NewPDFCache(time.Millisecond)
	orderID := uuid.New()

	cache.Save(orderID, []byte("labels"))
	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get(orderID)
	require.False(t, ok)
}

func TestPDFCache_PurgeExpired(t *testing.T) {
	cache := NewPDFCache(time.Millisecond)
	cache.Save(uuid.New(), []byte("a"))
	cache.Save(uuid.New(), []byte("b"))
	time.Sleep(5 * time.Millisecond)

	fresh := uuid.New()
	cache.ttl = time.Minute
	cache.Save(fresh, []byte("c"))

	require.Equal(t, 2, cache.PurgeExpired())
	_, ok := cache.Get(fresh)
	require.True(t, ok)
}
