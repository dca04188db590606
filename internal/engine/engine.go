// Package engine defines the store's public contract and its native
// log-structured implementation.
//
// Engine abstracts three operations — set, get, remove — behind one
// interface so the service layer can dispatch identically to either the
// native LSKV engine or the ordered-tree adapter in internal/treeengine.
// LSKV binds together the record codec, the segment registry, and the
// in-memory index into the algorithms spec.md §4.4 describes: durable
// writes that update the index only after the underlying segment append
// is flushed, reads that dereference an index entry by seeking into the
// owning segment, and online compaction triggered once the garbage
// counter crosses a configurable ratio of the live key count.
package engine

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/ignitedb/ignite/internal/codec"
	"github.com/ignitedb/ignite/internal/index"
	"github.com/ignitedb/ignite/internal/segment"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"go.uber.org/zap"
)

// Engine is the contract both the native engine and the tree adapter
// implement. Get's second return reports whether the key is bound.
type Engine interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
	Close() error
}

// LSKV is the native log-structured engine: the normative implementation
// of spec.md §4.4.
type LSKV struct {
	options  *options.Options
	log      *zap.SugaredLogger
	index    *index.Index
	registry *segment.Registry
	closed   atomic.Bool
}

// Config holds the parameters needed to open an LSKV instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Open opens (or creates) the store at Options.DataDir, replaying every
// segment to rebuild the index, and returns a ready-to-use engine.
func Open(ctx context.Context, config *Config) (*LSKV, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewEngineError(nil, errors.ErrorCodeInvalidInput, "engine configuration is required").WithOp("Open")
	}

	opts := config.Options
	log := config.Logger

	log.Infow("opening engine", "dataDir", opts.DataDir, "engine", opts.Engine)

	registry, err := segment.Open(opts.DataDir, opts.SegmentOptions.Prefix, log)
	if err != nil {
		return nil, err
	}

	idx, err := index.New(&index.Config{Logger: log})
	if err != nil {
		registry.Close()
		return nil, err
	}

	e := &LSKV{options: opts, log: log, index: idx, registry: registry}

	if err := e.replay(); err != nil {
		registry.Close()
		return nil, err
	}

	log.Infow("engine opened", "liveKeys", idx.Len())
	return e, nil
}

// replay rebuilds the index from every segment in creation order, per
// spec.md §4.2: a Set installs or overwrites a binding (overwrites count
// as garbage), a Remove erases one (never counted as garbage, and
// tolerated even if the key was never bound).
func (e *LSKV) replay() error {
	for _, seg := range e.registry.SegmentsInOrder() {
		entries, err := seg.Replay()
		if err != nil {
			return err
		}

		for _, entry := range entries {
			switch entry.Record.Tag {
			case codec.TagSet:
				if e.index.Put(entry.Record.Key, index.ValueLocation{SegmentID: seg.ID(), Offset: entry.Offset}) {
					e.index.IncrGarbage()
				}
			case codec.TagRemove:
				e.index.Delete(entry.Record.Key)
			}
		}
	}

	return nil
}

// Set durably stores value under key, compacting first if the garbage
// counter has crossed the configured ratio.
func (e *LSKV) Set(ctx context.Context, key, value string) error {
	if e.closed.Load() {
		return errors.NewEngineError(nil, errors.ErrorCodeInternal, "engine is closed").WithOp("Set").WithKey(key)
	}

	if e.index.Contains(key) {
		e.index.IncrGarbage()
	}

	if e.shouldCompact() {
		if err := e.compact(); err != nil {
			return err
		}
	}

	segID, offset, err := e.registry.AppendActive(codec.NewSet(key, value))
	if err != nil {
		return err
	}

	e.index.Put(key, index.ValueLocation{SegmentID: segID, Offset: offset})
	return nil
}

// Get returns the current value of key, or reports it unbound.
func (e *LSKV) Get(ctx context.Context, key string) (string, bool, error) {
	if e.closed.Load() {
		return "", false, errors.NewEngineError(nil, errors.ErrorCodeInternal, "engine is closed").WithOp("Get").WithKey(key)
	}

	loc, ok := e.index.Get(key)
	if !ok {
		return "", false, nil
	}

	record, err := e.registry.ReadAt(loc.SegmentID, loc.Offset)
	if err != nil {
		return "", false, err
	}

	if record.Tag != codec.TagSet {
		return "", false, errors.NewCorruptError(nil, "Get", key).WithKey(key)
	}

	return record.Value, true, nil
}

// Remove unbinds key. Removing a key that is not currently bound fails
// NotFound without writing a tombstone.
func (e *LSKV) Remove(ctx context.Context, key string) error {
	if e.closed.Load() {
		return errors.NewEngineError(nil, errors.ErrorCodeInternal, "engine is closed").WithOp("Remove").WithKey(key)
	}

	if !e.index.Contains(key) {
		return errors.NewKeyNotFoundEngineError("Remove", key)
	}

	e.index.IncrGarbage()
	e.index.Delete(key)

	if _, _, err := e.registry.AppendActive(codec.NewRemove(key)); err != nil {
		return err
	}

	return nil
}

// shouldCompact reports whether the garbage counter has crossed the
// configured ratio of the live key count, the trigger spec.md §4.4 names
// (source default: garbage > len(index)/4, i.e. ratio 0.25).
func (e *LSKV) shouldCompact() bool {
	ratio := e.options.CompactionGarbageRatio
	if ratio <= 0 {
		ratio = options.DefaultCompactionGarbageRatio
	}

	liveKeys := e.index.Len()
	if liveKeys == 0 {
		return false
	}

	return float64(e.index.Garbage()) > ratio*float64(liveKeys)
}

// compact rewrites every live key into a fresh segment and retires every
// other segment, per spec.md §4.4. It reads each live value through the
// pre-compaction registry before any old segment is closed, then installs
// the new segment only once it is fully durable, so a crash mid-compaction
// still leaves a replayable directory behind.
func (e *LSKV) compact() error {
	keys := e.index.Keys()
	sort.Strings(keys)

	e.log.Infow("starting compaction", "liveKeys", len(keys), "garbage", e.index.Garbage())

	newSeg, err := e.registry.BeginCompaction()
	if err != nil {
		return err
	}

	newLocations := make(map[string]index.ValueLocation, len(keys))

	for _, key := range keys {
		loc, ok := e.index.Get(key)
		if !ok {
			continue // concurrent removal is impossible under the single-threaded model, but tolerate it.
		}

		record, err := e.registry.ReadAt(loc.SegmentID, loc.Offset)
		if err != nil {
			newSeg.Close()
			return err
		}
		if record.Tag != codec.TagSet {
			newSeg.Close()
			return errors.NewCorruptError(nil, "Compact", key).WithKey(key)
		}

		encoded, err := codec.Encode(codec.NewSet(key, record.Value))
		if err != nil {
			newSeg.Close()
			return err
		}

		offset, err := newSeg.Append(encoded)
		if err != nil {
			newSeg.Close()
			return err
		}

		newLocations[key] = index.ValueLocation{SegmentID: newSeg.ID(), Offset: offset}
	}

	if err := e.registry.SwapCompacted(newSeg); err != nil {
		return err
	}

	for key, loc := range newLocations {
		e.index.Put(key, loc)
	}
	e.index.ResetGarbage()

	e.log.Infow("compaction finished", "newSegmentID", newSeg.ID(), "liveKeys", len(newLocations))
	return nil
}

// Close performs a final best-effort compaction if the garbage threshold
// has been crossed, then releases the index and segment registry. Skipping
// the final compaction on a failure there is not itself an error: replay
// on the next open still reconstructs a correct index.
func (e *LSKV) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return errors.NewEngineError(nil, errors.ErrorCodeInternal, "engine already closed").WithOp("Close")
	}

	if e.shouldCompact() {
		if err := e.compact(); err != nil {
			e.log.Errorw("drop-time compaction failed, continuing close", "error", err)
		}
	}

	if err := e.index.Close(); err != nil {
		if ie, ok := errors.AsIndexError(err); ok {
			e.log.Errorw("failed to close index", "operation", ie.Operation(), "error", err)
		} else {
			e.log.Errorw("failed to close index", "error", err)
		}
	}

	return e.registry.Close()
}

// LiveKeys returns the number of keys currently bound, for the admin
// surface's /stats endpoint.
func (e *LSKV) LiveKeys() int64 {
	return int64(e.index.Len())
}

// Garbage returns the current garbage counter, for the admin surface's
// /stats endpoint.
func (e *LSKV) Garbage() int64 {
	return e.index.Garbage()
}
