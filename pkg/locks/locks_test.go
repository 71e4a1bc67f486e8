package locks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeWriteLockExcludesWriters(t *testing.T) {
	svc := NewInMemory()

	h1, err := svc.AcquireNodeLock(1, Write)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		h2, err := svc.AcquireNodeLock(1, Write)
		require.NoError(t, err)
		close(acquired)
		h2.Release()
	}()

	select {
	case <-acquired:
		t.Fatal("second writer acquired lock while first still held it")
	case <-time.After(30 * time.Millisecond):
	}

	h1.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second writer never acquired lock after release")
	}
}

func TestNodeReadLocksDoNotExclude(t *testing.T) {
	svc := NewInMemory()

	h1, err := svc.AcquireNodeLock(1, Read)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		h2, err := svc.AcquireNodeLock(1, Read)
		require.NoError(t, err)
		h2.Release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked behind first reader")
	}
	h1.Release()
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	svc := NewInMemory()
	h, err := svc.AcquireNodeLock(1, Write)
	require.NoError(t, err)
	h.Release()
	assert.NotPanics(t, func() { h.Release() })
}

func TestGroupReleaseAllReleasesEveryLock(t *testing.T) {
	svc := NewInMemory()
	g := NewGroup(svc)

	require.NoError(t, g.Node(1, Write))
	require.NoError(t, g.Node(2, Write))
	require.NoError(t, g.Relationship(10))

	g.ReleaseAll()

	h, err := svc.AcquireNodeLock(1, Write)
	require.NoError(t, err)
	h.Release()

	h2, err := svc.AcquireNodeLock(2, Write)
	require.NoError(t, err)
	h2.Release()

	h3, err := svc.AcquireRelationshipLock(10)
	require.NoError(t, err)
	h3.Release()
}

func TestGroupReleaseAllIsSafeToCallTwice(t *testing.T) {
	svc := NewInMemory()
	g := NewGroup(svc)
	require.NoError(t, g.Node(1, Write))
	assert.NotPanics(t, func() {
		g.ReleaseAll()
		g.ReleaseAll()
	})
}
