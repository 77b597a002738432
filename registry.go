package ux

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry caches loaded dictionaries by file path and deduplicates
// concurrent opens of the same path, so N request-handling goroutines
// racing to open the same on-disk dictionary at process start pay for
// exactly one load. Dictionaries are immutable once built, so once a
// path has been loaded the cached *Dictionary is handed out to every
// caller without re-reading the file.
type Registry struct {
	group singleflight.Group

	mu     sync.RWMutex
	byPath map[string]*Dictionary

	opts []Option
}

// NewRegistry creates a Registry that applies optFns to every
// dictionary it loads.
func NewRegistry(optFns ...Option) *Registry {
	return &Registry{
		byPath: make(map[string]*Dictionary),
		opts:   optFns,
	}
}

// openFile is a test seam: registry_test.go swaps this to count actual
// file opens and prove Open's singleflight dedup.
var openFile = os.Open

// Open returns the dictionary at path, loading and caching it on the
// first call. Concurrent calls for the same path share one load via
// singleflight; callers for different paths proceed independently.
func (r *Registry) Open(ctx context.Context, path string) (*Dictionary, error) {
	r.mu.RLock()
	d, ok := r.byPath[path]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}

	v, err, _ := r.group.Do(path, func() (any, error) {
		r.mu.RLock()
		if d, ok := r.byPath[path]; ok {
			r.mu.RUnlock()
			return d, nil
		}
		r.mu.RUnlock()

		f, err := openFile(path)
		if err != nil {
			return nil, translateError(fmt.Errorf("uxdict: registry open %s: %w", path, err))
		}
		defer f.Close()

		d, err := Load(ctx, f, r.opts...)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.byPath[path] = d
		r.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dictionary), nil
}

// Evict drops the cached dictionary for path, if any, so the next
// Open re-reads it from disk.
func (r *Registry) Evict(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byPath, path)
}

// Len returns the number of dictionaries currently cached.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPath)
}
