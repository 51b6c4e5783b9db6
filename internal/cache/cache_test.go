package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_HitMissAndEviction(t *testing.T) {
	c := New[int](2, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Add("c", 3) // evicts b, the least recently used
	_, ok = c.Get("b")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	c.Purge()
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCache_Expires(t *testing.T) {
	c := New[string](4, 20*time.Millisecond)
	c.Add("k", "v")
	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestFingerprint_StableAndDistinct(t *testing.T) {
	type in struct {
		A string
		B float64
	}
	a1, err := Fingerprint(in{"x", 1})
	require.NoError(t, err)
	a2, err := Fingerprint(in{"x", 1})
	require.NoError(t, err)
	b, err := Fingerprint(in{"x", 2})
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.Len(t, a1, 64)

	_, err = Fingerprint(make(chan int))
	assert.Error(t, err)
}
