package dirwalk

import (
	"context"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kernelio/fskit/executor"
	"github.com/kernelio/fskit/path"
)

// WalkOptions controls Walk's traversal (spec §4.4.2).
type WalkOptions struct {
	FollowSymlinks bool
	SkipHidden     bool
	// MaxDepth bounds how deep below root an emitted entry may be: 1
	// yields only root's direct children. 0 means unlimited.
	MaxDepth int
	// MaxConcurrency bounds concurrently in-flight directory visits; <= 0
	// resolves to 1 (sequential BFS).
	MaxConcurrency int
}

// walkItem is one unit of output: a discovered path, or a terminal
// error that fails the walk's iterator.
type walkItem struct {
	p   path.Path
	err error
}

// WalkIterator is the async sequence returned by Walk. The zero value
// is not usable.
type WalkIterator struct {
	out    chan walkItem // single-slot: same backpressure discipline as Iterator
	cancel context.CancelFunc

	mu         sync.Mutex
	terminated bool
}

// visitedKey is a canonical (device, inode) pair used to break symlink
// cycles when FollowSymlinks is set (spec §4.4.2 "Walk algorithm").
type visitedKey struct {
	dev, ino uint64
}

// visitedSet is GUARDED_BY its own mutex: concurrent walk workers race
// to claim directories, and only the first claimant may recurse.
type visitedSet struct {
	mu sync.Mutex
	m  map[visitedKey]struct{}
}

func (v *visitedSet) claim(k visitedKey) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, seen := v.m[k]; seen {
		return false
	}
	v.m[k] = struct{}{}
	return true
}

// Walk starts a BFS traversal of root (spec §4.4.2). The returned
// iterator yields every entry discovered — files, directories, and
// symlinks alike — as root joined with the entry's relative path
// (absolute only when root is absolute); directories (and, when
// FollowSymlinks is set, symlinks that resolve to directories) are
// additionally queued for recursive visitation.
func Walk(exec *executor.Executor, root path.Path, opts WalkOptions) *WalkIterator {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}

	runCtx, cancel := context.WithCancel(context.Background())
	wi := &WalkIterator{out: make(chan walkItem, 1), cancel: cancel}
	go wi.run(runCtx, exec, root, opts)
	return wi
}

func (wi *WalkIterator) run(ctx context.Context, exec *executor.Executor, root path.Path, opts WalkOptions) {
	defer close(wi.out)

	sem := semaphore.NewWeighted(int64(opts.MaxConcurrency))
	visited := &visitedSet{m: make(map[visitedKey]struct{})}

	var wg sync.WaitGroup

	if opts.FollowSymlinks {
		if key, ok := canonicalKey(root.String()); ok {
			visited.claim(key)
		}
	}

	var visit func(p path.Path, depth int)
	visit = func(p path.Path, depth int) {
		defer wg.Done()

		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer sem.Release(1)

		it, err := Entries(ctx, exec, p, DefaultBatchSize)
		if err != nil {
			wi.emit(ctx, walkItem{err: err})
			return
		}
		defer it.Terminate()

		for {
			e, ok, nerr := it.Next(ctx)
			if nerr != nil {
				wi.emit(ctx, walkItem{err: nerr})
				return
			}
			if !ok {
				return
			}
			if opts.SkipHidden && strings.HasPrefix(e.Name, ".") {
				continue
			}

			childPath, jerr := p.Join(e.Name)
			if jerr != nil {
				continue
			}

			if !wi.emit(ctx, walkItem{p: childPath}) {
				return
			}

			if opts.MaxDepth > 0 && depth+1 >= opts.MaxDepth {
				continue
			}

			recurse := e.Type == TypeDirectory
			if !recurse && opts.FollowSymlinks && e.Type == TypeSymlink {
				if fi, statErr := os.Stat(childPath.String()); statErr == nil && fi.IsDir() {
					recurse = true
				}
			}
			if !recurse {
				continue
			}
			if opts.FollowSymlinks {
				if key, ok := canonicalKey(childPath.String()); ok && !visited.claim(key) {
					continue // cycle: this directory has already been entered
				}
			}

			wg.Add(1)
			go visit(childPath, depth+1)
		}
	}

	wg.Add(1)
	visit(root, 0)
	wg.Wait()
}

// emit delivers item, reporting false if the walk was cancelled instead.
func (wi *WalkIterator) emit(ctx context.Context, item walkItem) bool {
	select {
	case wi.out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

// Next returns the next discovered path. ok is false at end-of-walk.
func (wi *WalkIterator) Next(ctx context.Context) (p path.Path, ok bool, err error) {
	select {
	case item, chanOK := <-wi.out:
		if !chanOK {
			return path.Path{}, false, nil
		}
		if item.err != nil {
			return path.Path{}, false, item.err
		}
		return item.p, true, nil
	case <-ctx.Done():
		return path.Path{}, false, ctx.Err()
	}
}

// Terminate ends the walk early: idempotent; cancels all outstanding
// directory visits and their underlying handles.
func (wi *WalkIterator) Terminate() {
	wi.mu.Lock()
	defer wi.mu.Unlock()
	if wi.terminated {
		return
	}
	wi.terminated = true
	wi.cancel()
}
