package segment

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/ignitedb/ignite/internal/codec"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/filesys"
	"github.com/ignitedb/ignite/pkg/seginfo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Registry owns every open segment for a store: the sealed, read-only
// history plus the single active append target. It is the only component
// that knows which segment-id is currently active.
type Registry struct {
	mu       sync.Mutex
	dir      string
	prefix   string
	log      *zap.SugaredLogger
	segments map[uint64]*Segment
	order    []uint64
	activeID uint64
}

// Open performs the directory discovery spec.md §4.2 describes: create the
// directory if absent, create a fresh id-0 segment if it holds no *.log
// files, otherwise open every discovered segment and make the
// highest-numbered one active.
func Open(dir, prefix string, log *zap.SugaredLogger) (*Registry, error) {
	if err := filesys.CreateDir(dir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dir)
	}

	names, err := seginfo.ListSegments(dir, prefix)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to list segments").WithPath(dir)
	}

	r := &Registry{dir: dir, prefix: prefix, log: log, segments: make(map[uint64]*Segment)}

	if len(names) == 0 {
		log.Infow("no existing segments found, creating initial segment", "dir", dir)
		seg, err := openActive(filepath.Join(dir, seginfo.GenerateName(0, prefix)), 0)
		if err != nil {
			return nil, err
		}
		r.segments[0] = seg
		r.order = []uint64{0}
		r.activeID = 0
		return r, nil
	}

	for i, name := range names {
		id, err := seginfo.ParseSegmentID(name, prefix)
		if err != nil {
			return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to parse segment filename").WithFileName(name)
		}

		path := filepath.Join(dir, name)
		isLast := i == len(names)-1

		var seg *Segment
		if isLast {
			seg, err = openActive(path, id)
		} else {
			seg, err = openSealed(path, id)
		}
		if err != nil {
			return nil, err
		}

		r.segments[id] = seg
		r.order = append(r.order, id)
		if isLast {
			r.activeID = id
		}
	}

	log.Infow("opened existing segments", "dir", dir, "count", len(r.order), "activeID", r.activeID)
	return r, nil
}

// SegmentsInOrder returns every segment, oldest first, for a full replay.
func (r *Registry) SegmentsInOrder() []*Segment {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Segment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.segments[id])
	}
	return out
}

// Active returns the current append target.
func (r *Registry) Active() *Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.segments[r.activeID]
}

// AppendActive encodes and appends record to the active segment, returning
// the segment id and the offset the record was written at.
func (r *Registry) AppendActive(record codec.Record) (uint64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoded, err := codec.Encode(record)
	if err != nil {
		return 0, 0, err
	}

	active := r.segments[r.activeID]
	offset, err := active.Append(encoded)
	if err != nil {
		return 0, 0, err
	}

	return active.id, offset, nil
}

// ReadAt decodes the record at (segmentID, offset).
func (r *Registry) ReadAt(segmentID uint64, offset int64) (codec.Record, error) {
	r.mu.Lock()
	seg, ok := r.segments[segmentID]
	r.mu.Unlock()

	if !ok {
		return codec.Record{}, errors.NewCorruptError(nil, "Get", "").WithOp("Get")
	}

	return seg.ReadAt(offset)
}

// BeginCompaction allocates a new segment with an id strictly greater than
// every existing one, without registering it. Callers write the live key
// set into it and then call SwapCompacted once it's durable.
func (r *Registry) BeginCompaction() (*Segment, error) {
	r.mu.Lock()
	maxID := r.order[len(r.order)-1]
	r.mu.Unlock()

	newID := maxID + 1
	path := filepath.Join(r.dir, seginfo.GenerateName(newID, r.prefix))
	return openActive(path, newID)
}

// SwapCompacted installs newSeg as the sole active segment, closing and
// unlinking every segment it replaces. newSeg must already be durable on
// disk; the old segments are only removed after the swap, so a crash
// mid-compaction still leaves a replayable, if larger, directory behind.
func (r *Registry) SwapCompacted(newSeg *Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	retiredCount := len(r.order)

	var errs error
	for _, id := range r.order {
		old := r.segments[id]
		if err := old.Close(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := filesys.DeleteFile(old.path); err != nil {
			errs = multierr.Append(errs, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to unlink retired segment").WithPath(old.path))
		}
	}

	r.segments = map[uint64]*Segment{newSeg.id: newSeg}
	r.order = []uint64{newSeg.id}
	r.activeID = newSeg.id

	r.log.Infow("compaction swapped in new segment", "newSegmentID", newSeg.id, "retiredCount", retiredCount)
	return errs
}

// Close closes every open segment, aggregating any failures.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs error
	ids := slices.Clone(r.order)
	for _, id := range ids {
		if err := r.segments[id].Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
