package executor

import (
	"sync"

	"github.com/kernelio/fskit/ioerr"
)

// Closer is the minimal capability a registered handle must offer; a
// *handle.Handle satisfies it.
type Closer interface {
	Close() error
}

// HandleID names a registered handle by executor generation and slot
// index (spec §3 "Handle ID"). A HandleID from one executor, or from a
// generation that has since been shut down, is rejected rather than
// silently resolved against unrelated state.
type HandleID struct {
	executor   *registry
	generation uint64
	slot       uint64
}

type slot struct {
	mu     sync.Mutex
	h      Closer
	closed bool
}

// registry is the executor's handle table: a generation counter plus a
// mutex-protected slot map, so every live HandleID can be invalidated in
// one step on shutdown without scanning outstanding callers.
type registry struct {
	mu         sync.Mutex
	generation uint64
	next       uint64
	slots      map[uint64]*slot
	shutDown   bool
}

func newRegistry() *registry {
	return &registry{slots: make(map[uint64]*slot)}
}

func (r *registry) insert(h Closer) HandleID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.slots[id] = &slot{h: h}
	return HandleID{executor: r, generation: r.generation, slot: id}
}

func (r *registry) lookup(id HandleID) (*slot, error) {
	if id.executor != r {
		return nil, ioerr.New(ioerr.ScopeMismatch, "handle belongs to a different executor")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.shutDown || id.generation != r.generation {
		return nil, ioerr.New(ioerr.InvalidHandle, "handle generation is no longer valid")
	}
	s, ok := r.slots[id.slot]
	if !ok {
		return nil, ioerr.New(ioerr.InvalidHandle, "handle has been destroyed")
	}
	return s, nil
}

// withHandle locks the handle's slot for the duration of closure, so two
// concurrent jobs referencing the same ID never observe interleaved
// syscalls on the underlying file descriptor.
func (r *registry) withHandle(id HandleID, closure func(Closer) (any, error)) (any, error) {
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ioerr.New(ioerr.InvalidHandle, "handle has been destroyed")
	}
	return closure(s.h)
}

func (r *registry) destroy(id HandleID) error {
	s, err := r.lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	r.mu.Lock()
	delete(r.slots, id.slot)
	r.mu.Unlock()

	return s.h.Close()
}

// closeAll closes every still-registered handle and bumps the
// generation, invalidating any HandleID issued before this call (spec
// §4.2 "Handle registry design": shutdown closes outstanding handles and
// makes their IDs permanently invalid).
func (r *registry) closeAll() {
	r.mu.Lock()
	slots := r.slots
	r.slots = make(map[uint64]*slot)
	r.generation++
	r.shutDown = true
	r.mu.Unlock()

	for _, s := range slots {
		s.mu.Lock()
		if !s.closed {
			s.closed = true
			_ = s.h.Close()
		}
		s.mu.Unlock()
	}
}
