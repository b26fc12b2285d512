package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionGate_OnePerSession(t *testing.T) {
	gate := NewSubmissionGate()

	release, ok := gate.TryAcquire("a")
	require.True(t, ok)

	_, ok = gate.TryAcquire("a")
	assert.False(t, ok, "second acquire for the same session must fail")

	releaseB, ok := gate.TryAcquire("b")
	require.True(t, ok, "other sessions are independent")
	assert.Equal(t, 2, gate.Outstanding())

	release()
	release()
	releaseB()
	assert.Equal(t, 0, gate.Outstanding())

	release, ok = gate.TryAcquire("a")
	require.True(t, ok, "session is free again after release")
	release()
}

func TestSubmissionGate_Concurrent(t *testing.T) {
	gate := NewSubmissionGate()

	var acquired atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	releases := make(chan func(), 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if release, ok := gate.TryAcquire("shared"); ok {
				acquired.Add(1)
				releases <- release
			}
		}()
	}
	close(start)
	wg.Wait()
	close(releases)

	assert.Equal(t, int32(1), acquired.Load())
	for release := range releases {
		release()
	}
	assert.Equal(t, 0, gate.Outstanding())
}
