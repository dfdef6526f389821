// Package dirwalk implements C4's async directory pipeline (spec
// §4.4.2): a single-producer, single-batch-slot async iterator over one
// directory's entries, and a BFS walk built on top of it with
// (device, inode) cycle detection.
//
// Grounded on other_examples' azcopy common/parallel.Crawl (the
// worklist + bounded-concurrency worker-pool shape for walk, adapted
// from its unbounded sync.Cond worklist into golang.org/x/sync/semaphore
// plus a single-slot output channel) and the teacher's
// fs/dir_handle.go GUARDED_BY(Mu) convention for documenting the
// producer/consumer shared state below.
package dirwalk

import (
	"context"
	"io"
	"os"

	"github.com/kernelio/fskit/executor"
	"github.com/kernelio/fskit/ioerr"
	"github.com/kernelio/fskit/path"
)

// EntryType classifies a DirEntry (spec §3 "DirEntry").
type EntryType int

const (
	TypeRegular EntryType = iota
	TypeDirectory
	TypeSymlink
	TypeOther
)

// DirEntry is one entry returned by a directory iterator.
type DirEntry struct {
	Name string
	Type EntryType
}

func classifyType(e os.DirEntry) EntryType {
	switch {
	case e.Type()&os.ModeSymlink != 0:
		return TypeSymlink
	case e.IsDir():
		return TypeDirectory
	case e.Type().IsRegular():
		return TypeRegular
	default:
		return TypeOther
	}
}

// DefaultBatchSize is spec §4.4.2's default. Entries resolves a
// batchSize <= 0 to DefaultBatchSize and caps larger values at 1024.
const DefaultBatchSize = 64

// batch is one producer submission's worth of entries, plus a
// terminal error (io.EOF on ordinary exhaustion).
type batch struct {
	entries []DirEntry
	err     error
}

// Iterator is the async sequence returned by Entries. The zero value is
// not usable.
type Iterator struct {
	exec *executor.Executor
	id   executor.HandleID

	batches chan batch // single-slot: the producer/consumer backpressure primitive
	cancel  context.CancelFunc

	terminated bool
	current    []DirEntry
	idx        int
	pending    error
}

// Entries opens path and returns an async iterator over its entries
// (spec §4.4.2). A producer goroutine is started immediately, reading
// batches of batchSize entries through exec and feeding them to a
// single-slot channel; the producer blocks on that channel until Next
// is called, which is this package's backpressure mechanism.
func Entries(ctx context.Context, exec *executor.Executor, p path.Path, batchSize int) (*Iterator, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > 1024 {
		batchSize = 1024
	}

	dh, err := executor.Run(ctx, exec, func() (*dirHandle, error) { return openDir(p) })
	if err != nil {
		return nil, err
	}
	id, err := exec.RegisterHandle(ctx, dh)
	if err != nil {
		_ = dh.Close()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	it := &Iterator{
		exec:    exec,
		id:      id,
		batches: make(chan batch, 1),
		cancel:  cancel,
	}
	go it.produce(runCtx, batchSize)
	return it, nil
}

func (it *Iterator) produce(ctx context.Context, batchSize int) {
	defer close(it.batches)
	m := it.exec.Metrics()
	for {
		entries, err := executor.WithHandle(ctx, it.exec, it.id, func(c executor.Closer) ([]DirEntry, error) {
			return c.(*dirHandle).readBatch(batchSize)
		})
		if len(entries) > 0 {
			m.RecordWalkBatch(ctx, int64(len(entries)))
		}

		select {
		case it.batches <- batch{entries: entries, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// Next advances the iterator. ok is false at end-of-sequence (err is
// nil in that case); a non-nil err fails the iterator without
// invalidating entries already returned (spec §4.4.2 "Error semantics
// during iteration").
func (it *Iterator) Next(ctx context.Context) (entry DirEntry, ok bool, err error) {
	for {
		if it.idx < len(it.current) {
			e := it.current[it.idx]
			it.idx++
			return e, true, nil
		}
		it.current = nil
		it.idx = 0

		if it.pending != nil {
			perr := it.pending
			it.pending = nil
			if perr == io.EOF {
				return DirEntry{}, false, nil
			}
			return DirEntry{}, false, perr
		}

		select {
		case b, chanOK := <-it.batches:
			if !chanOK {
				return DirEntry{}, false, nil
			}
			it.current = b.entries
			it.pending = b.err
		case <-ctx.Done():
			return DirEntry{}, false, ioerr.New(ioerr.Cancelled, "dirwalk: caller cancelled")
		}
	}
}

// Terminate ends the iterator (spec §4.4.2 "Cancellation and
// teardown"): idempotent; cancels the producer; closes the underlying
// directory handle on a worker.
func (it *Iterator) Terminate() error {
	if it.terminated {
		return nil
	}
	it.terminated = true
	it.cancel()
	return it.exec.DestroyHandle(context.Background(), it.id)
}
