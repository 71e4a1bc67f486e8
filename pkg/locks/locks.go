package locks

import (
	"sync"

	"github.com/cuemby/graphstore/pkg/metrics"
	"github.com/google/uuid"
)

// Mode is the lock mode requested for a node lock.
type Mode int

const (
	Read Mode = iota
	Write
)

// Handle is a held lock; Release gives it back. Double-release is a
// no-op.
type Handle interface {
	Release()
}

// Service is the lock-manager contract this package implements:
// acquireNodeLock keyed by node id and mode, plus an ad-hoc mutex keyed
// by relationship id used while splicing chain neighbors.
type Service interface {
	AcquireNodeLock(nodeID int64, mode Mode) (Handle, error)
	AcquireRelationshipLock(relID int64) (Handle, error)
}

// InMemory is a process-local Service: one *sync.RWMutex per node id and
// one *sync.Mutex per relationship id, created lazily and kept for the
// process lifetime. A distributed deployment would back this with a
// proper cluster lock manager instead; that component is out of scope
// here.
type InMemory struct {
	mu        sync.Mutex
	nodeLocks map[int64]*sync.RWMutex
	relLocks  map[int64]*sync.Mutex
}

// NewInMemory builds an empty in-memory lock service.
func NewInMemory() *InMemory {
	return &InMemory{
		nodeLocks: make(map[int64]*sync.RWMutex),
		relLocks:  make(map[int64]*sync.Mutex),
	}
}

type rwHandle struct {
	mu   *sync.RWMutex
	mode Mode
	once sync.Once
}

func (h *rwHandle) Release() {
	h.once.Do(func() {
		if h.mode == Write {
			h.mu.Unlock()
		} else {
			h.mu.RUnlock()
		}
	})
}

type mutexHandle struct {
	mu   *sync.Mutex
	once sync.Once
}

func (h *mutexHandle) Release() {
	h.once.Do(h.mu.Unlock)
}

// AcquireNodeLock blocks until the node's lock is held in the requested
// mode.
func (s *InMemory) AcquireNodeLock(nodeID int64, mode Mode) (Handle, error) {
	mu := s.nodeMutex(nodeID)
	if mode == Write {
		mu.Lock()
	} else {
		mu.RLock()
	}
	return &rwHandle{mu: mu, mode: mode}, nil
}

// AcquireRelationshipLock blocks until the relationship's mutex is held.
func (s *InMemory) AcquireRelationshipLock(relID int64) (Handle, error) {
	mu := s.relMutex(relID)
	mu.Lock()
	return &mutexHandle{mu: mu}, nil
}

func (s *InMemory) nodeMutex(id int64) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.nodeLocks[id]
	if !ok {
		mu = &sync.RWMutex{}
		s.nodeLocks[id] = mu
	}
	return mu
}

func (s *InMemory) relMutex(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.relLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.relLocks[id] = mu
	}
	return mu
}

// Group is a scoped collection of held locks: acquire through it during
// a commit, then ReleaseAll once, guaranteeing every lock is released
// regardless of which exit path commit takes.
type Group struct {
	id      string
	svc     Service
	handles []Handle
}

// NewGroup starts an empty lock group against svc, tagged with a fresh
// correlation id so commit's log lines can tie every lock acquired
// during one commit back to the same scope.
func NewGroup(svc Service) *Group {
	return &Group{id: uuid.NewString(), svc: svc}
}

// ID returns this group's correlation id.
func (g *Group) ID() string { return g.id }

// Node acquires a node lock and tracks it for release.
func (g *Group) Node(id int64, mode Mode) error {
	timer := metrics.NewTimer()
	h, err := g.svc.AcquireNodeLock(id, mode)
	timer.ObserveDuration(metrics.NodeLockWaitDuration)
	if err != nil {
		return err
	}
	g.handles = append(g.handles, h)
	return nil
}

// Relationship acquires a relationship mutex and tracks it for release.
func (g *Group) Relationship(id int64) error {
	h, err := g.svc.AcquireRelationshipLock(id)
	if err != nil {
		return err
	}
	g.handles = append(g.handles, h)
	return nil
}

// ReleaseAll releases every lock acquired through this group, in reverse
// acquisition order. Safe to call multiple times.
func (g *Group) ReleaseAll() {
	for i := len(g.handles) - 1; i >= 0; i-- {
		g.handles[i].Release()
	}
	g.handles = nil
}
