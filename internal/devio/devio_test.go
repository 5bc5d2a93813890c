package devio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayIDChar(t *testing.T) {
	cases := []struct {
		id   int
		want byte
	}{
		{0, '0'}, {9, '9'}, {10, 'A'}, {15, 'F'},
	}
	for _, c := range cases {
		got, err := relayIDChar(c.id)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
	_, err := relayIDChar(16)
	assert.Error(t, err)
}

func TestFakeRelay(t *testing.T) {
	r := NewFakeRelay()
	on, err := r.Read(3)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, r.Set(3, true))
	on, err = r.Read(3)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestFakeCounterAdvance(t *testing.T) {
	c := NewFakeCounter(2.0)
	c.Advance(10)
	count, err := c.ReadCount()
	require.NoError(t, err)
	assert.Equal(t, 20.0, count)

	require.NoError(t, c.ClearCount())
	count, err = c.ReadCount()
	require.NoError(t, err)
	assert.Equal(t, 0.0, count)
}

func TestFakeCounterClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeCounter(1.0)
	c.Clock = func() time.Time { return now }

	first, err := c.ReadCount()
	require.NoError(t, err)
	assert.Equal(t, 0.0, first) // first read seeds, no spurious flow

	now = now.Add(10 * time.Second)
	second, err := c.ReadCount()
	require.NoError(t, err)
	assert.Equal(t, 10.0, second)
}
