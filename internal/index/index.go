// Package index provides the in-memory hash table the engine core
// consults on every get and mutates on every set/remove. It maps each live
// key to the ValueLocation of the record that currently binds it, and
// tracks a garbage counter the engine uses to decide when to compact.
//
// The index enables O(1)-average key lookups while keeping storage
// overhead in the map itself minimal; actual values live on disk and are
// only materialized when a get dereferences a ValueLocation.
package index

import (
	"github.com/ignitedb/ignite/pkg/errors"
)

// ErrIndexClosed is returned by Close when the index has already been closed.
var ErrIndexClosed = errors.NewIndexError(
	nil, errors.ErrorCodeInternal, "operation failed: cannot access closed index",
).WithOperation("Close")

// New creates an empty Index ready for concurrent use.
func New(config *Config) (*Index, error) {
	if config == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "index configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Index{log: config.Logger, entries: make(map[string]ValueLocation, 2048)}, nil
}

// Get looks up key, reporting whether it is currently bound.
func (idx *Index) Get(key string) (ValueLocation, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.entries[key]
	return loc, ok
}

// Put binds key to loc, reporting whether key was already bound. Callers
// decide whether an overwrite counts as garbage; Put itself just installs
// the new location atomically with respect to concurrent Gets.
func (idx *Index) Put(key string, loc ValueLocation) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	_, existed := idx.entries[key]
	idx.entries[key] = loc
	return existed
}

// Delete unbinds key, reporting whether it had been bound.
func (idx *Index) Delete(key string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	_, existed := idx.entries[key]
	delete(idx.entries, key)
	return existed
}

// Contains reports whether key is currently bound.
func (idx *Index) Contains(key string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.entries[key]
	return ok
}

// Len returns the number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Keys returns a snapshot of every currently-live key, for compaction to
// iterate over. The snapshot does not observe later mutations.
func (idx *Index) Keys() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	keys := make([]string, 0, len(idx.entries))
	for k := range idx.entries {
		keys = append(keys, k)
	}
	return keys
}

// IncrGarbage increments the garbage counter by one.
func (idx *Index) IncrGarbage() {
	idx.garbage.Add(1)
}

// Garbage returns the current garbage count.
func (idx *Index) Garbage() int64 {
	return idx.garbage.Load()
}

// ResetGarbage zeroes the garbage counter, called after a successful
// compaction.
func (idx *Index) ResetGarbage() {
	idx.garbage.Store(0)
}

// Close releases the index's backing map. The index must not be used
// afterwards.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing index", "liveKeys", idx.Len())

	idx.mu.Lock()
	defer idx.mu.Unlock()
	clear(idx.entries)
	idx.entries = nil
	return nil
}
