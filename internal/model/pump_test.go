package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amnona/irrigator/internal/devio"
)

func TestPump_OpenCloseLifecycle(t *testing.T) {
	relay := devio.NewFakeRelay()
	p := NewPump("fert1", "node1", 5, true, relay, 2.0)

	ok, line, err := p.Open(time.Now(), false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "opened pump fert1", line)

	on, rerr := relay.Read(5)
	require.NoError(t, rerr)
	assert.True(t, on)

	ok2, line2, err2 := p.Open(time.Now(), false)
	require.NoError(t, err2)
	assert.False(t, ok2) // already open, not forced
	assert.Equal(t, "", line2)

	ok3, line3, err3 := p.Close(time.Now(), false)
	require.NoError(t, err3)
	assert.True(t, ok3)
	assert.Equal(t, "closed pump fert1", line3)

	on2, _ := relay.Read(5)
	assert.False(t, on2)
}

func TestValve_ForceOffActuatesRegardlessOfInMemoryState(t *testing.T) {
	relay := devio.NewFakeRelay()
	require.NoError(t, relay.Set(5, true)) // relay physically on, e.g. after a crash mid-tick
	p := NewPump("fert1", "node1", 5, true, relay, 0)
	assert.False(t, p.IsOpen) // in-memory state believes it is closed

	ok, err := p.ForceOff()
	require.NoError(t, err)
	assert.True(t, ok)

	on, _ := relay.Read(5)
	assert.False(t, on)
	assert.False(t, p.IsOpen)
}

func TestValve_ForceOffOnRemoteNeverActuates(t *testing.T) {
	relay := devio.NewFakeRelay()
	f := NewFaucet("shared", "node2", 1, "drip", false, relay)
	ok, err := f.ForceOff()
	require.NoError(t, err)
	assert.False(t, ok)
}
