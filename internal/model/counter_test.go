package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCounter returns each of reads/errs in order on successive
// calls, repeating the last pair once exhausted.
type scriptedCounter struct {
	reads []float64
	errs  []error
	i     int
}

func (s *scriptedCounter) ReadCount() (float64, error) {
	idx := s.i
	if idx >= len(s.reads) {
		idx = len(s.reads) - 1
	}
	s.i++
	return s.reads[idx], s.errs[idx]
}

func (s *scriptedCounter) ClearCount() error { return nil }

func TestCounter_FirstReadSeedsWithoutFlow(t *testing.T) {
	dev := &scriptedCounter{reads: []float64{100}, errs: []error{nil}}
	c := NewCounter("c1", "node1", CounterFake, 1.0, dev)
	assert.Equal(t, -1.0, c.Flow)

	now := time.Now()
	require.NoError(t, c.Poll(now))
	assert.Equal(t, 100.0, c.Count)
	assert.Equal(t, -1.0, c.Flow) // first read never reports a spurious flow
}

// TestCounter_FlowThrottledByMinFlowInterval drives three reads: an
// initial seed, a reading under the 45s throttle (count updates, flow
// does not), and a reading past the throttle that computes flow
// against the original baseline rather than the throttled one.
func TestCounter_FlowThrottledByMinFlowInterval(t *testing.T) {
	dev := &scriptedCounter{
		reads: []float64{100, 130, 160},
		errs:  []error{nil, nil, nil},
	}
	c := NewCounter("c1", "node1", CounterFake, 1.0, dev)
	t0 := time.Now()

	require.NoError(t, c.Poll(t0))
	assert.Equal(t, 100.0, c.Count)

	require.NoError(t, c.Poll(t0.Add(10*time.Second)))
	assert.Equal(t, 130.0, c.Count) // count always updates
	assert.Equal(t, -1.0, c.Flow)   // but flow does not, under the throttle

	require.NoError(t, c.Poll(t0.Add(60*time.Second)))
	assert.Equal(t, 160.0, c.Count)
	assert.InDelta(t, 60.0, c.Flow, 0.001) // (160-100)*60/60s, against the original baseline
}

func TestCounter_TransientErrorReturnsPriorValueAndSuppressesNextFlow(t *testing.T) {
	boom := errors.New("serial timeout")
	dev := &scriptedCounter{
		reads: []float64{100, 0, 160},
		errs:  []error{nil, boom, nil},
	}
	c := NewCounter("c1", "node1", CounterFake, 1.0, dev)
	t0 := time.Now()
	require.NoError(t, c.Poll(t0))

	err := c.Poll(t0.Add(time.Minute))
	assert.Error(t, err)
	assert.Equal(t, 100.0, c.Count) // prior value preserved on transient failure

	// The failed attempt reseeds LastWaterTime at its own timestamp,
	// so the next successful read measures elapsed time from the
	// outage, not from the original baseline — suppressing a flow
	// synthesized across an unknown-duration gap (spec §9 open
	// question, resolved in DESIGN.md).
	require.NoError(t, c.Poll(t0.Add(61*time.Second)))
	assert.Equal(t, -1.0, c.Flow)
}

func TestCounter_Clear(t *testing.T) {
	dev := &scriptedCounter{reads: []float64{50}, errs: []error{nil}}
	c := NewCounter("c1", "node1", CounterFake, 1.0, dev)
	require.NoError(t, c.Poll(time.Now()))
	require.NoError(t, c.Clear())
	assert.Equal(t, 0.0, c.Count)
	assert.Equal(t, -1.0, c.Flow)
}

func TestCounter_CountsPerLiterConversion(t *testing.T) {
	dev := &scriptedCounter{reads: []float64{200}, errs: []error{nil}}
	c := NewCounter("c1", "node1", CounterFake, 4.0, dev) // 4 pulses per liter
	require.NoError(t, c.Poll(time.Now()))
	assert.Equal(t, 50.0, c.Count)
}
