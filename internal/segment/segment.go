// Package segment implements the append-only log files a store's records
// live in, and the Registry that tracks which segment is the active append
// target and which are retired, read-only history.
//
// A segment supports three operations: append (active segment only),
// positioned read of the record starting at a given offset, and full
// sequential replay yielding every (offset, record) pair in file order.
// Active segments are read through the open file handle directly, since
// they're still being appended to; sealed segments are memory-mapped with
// gommap, avoiding a syscall per lookup on the common, read-heavy path.
package segment

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ignitedb/ignite/internal/codec"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/tysonmote/gommap"
)

// Entry pairs a decoded record with the byte offset its encoding started
// at, as produced by Replay.
type Entry struct {
	Offset int64
	Record codec.Record
}

// Segment is one on-disk log file, either the single active append target
// or a sealed, read-only segment retained for its still-live records.
type Segment struct {
	id     uint64
	path   string
	file   *os.File
	mmap   gommap.MMap
	size   int64
	active bool
}

// openActive opens (creating if necessary) path as the active segment,
// positioned for appending.
func openActive(path string, id uint64) (*Segment, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat active segment").WithPath(path)
	}

	return &Segment{id: id, path: path, file: file, size: info.Size(), active: true}, nil
}

// openSealed opens path read-only and memory-maps its contents for the
// random-access reads a sealed segment serves.
func openSealed(path string, id uint64) (*Segment, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat sealed segment").WithPath(path)
	}

	s := &Segment{id: id, path: path, file: file, size: info.Size()}

	if info.Size() > 0 {
		m, err := gommap.Map(file.Fd(), gommap.PROT_READ, gommap.MAP_SHARED)
		if err != nil {
			file.Close()
			return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to mmap sealed segment").WithPath(path)
		}
		s.mmap = m
	}

	return s, nil
}

func (s *Segment) ID() uint64   { return s.id }
func (s *Segment) Path() string { return s.path }
func (s *Segment) Size() int64  { return s.size }
func (s *Segment) Active() bool { return s.active }

// Append writes an already-encoded record to the end of the segment and
// flushes it to disk before returning, satisfying the durability
// requirement that an append be observable by subsequent reads in this
// process before the caller's set/remove returns. It returns the offset
// the record was written at.
func (s *Segment) Append(encoded []byte) (int64, error) {
	if !s.active {
		return 0, errors.NewStorageError(nil, errors.ErrorCodeIO, "cannot append to a sealed segment").
			WithSegmentID(int(s.id)).WithPath(s.path)
	}

	offset := s.size

	n, err := s.file.Write(encoded)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record").
			WithSegmentID(int(s.id)).WithOffset(int(offset)).WithPath(s.path)
	}

	if err := s.file.Sync(); err != nil {
		syncErr := errors.ClassifySyncError(err, filepath.Base(s.path), s.path, int(offset))
		if se, ok := errors.AsStorageError(syncErr); ok {
			se.WithSegmentID(int(s.id))
		}
		return 0, syncErr
	}

	s.size += int64(n)
	return offset, nil
}

// ReadAt decodes the single record starting at offset.
func (s *Segment) ReadAt(offset int64) (codec.Record, error) {
	raw, err := s.sliceFrom(offset)
	if err != nil {
		return codec.Record{}, err
	}

	idx := bytes.IndexByte(raw, codec.Separator)
	if idx < 0 {
		return codec.Record{}, errors.NewCorruptError(
			fmt.Errorf("no record terminator found from offset %d in segment %d", offset, s.id), "Get", "",
		)
	}

	return codec.Decode(raw[:idx])
}

// Replay yields every complete (offset, record) pair in file order,
// starting from offset 0. A partial trailing record with no terminator is
// tolerated and silently dropped; a malformed record anywhere else in the
// file is a fatal Corrupt error, per spec.
func (s *Segment) Replay() ([]Entry, error) {
	raw, err := s.sliceFrom(0)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	offset := int64(0)

	for offset < int64(len(raw)) {
		rest := raw[offset:]
		idx := bytes.IndexByte(rest, codec.Separator)
		if idx < 0 {
			// Truncated trailing bytes: stop without error.
			break
		}

		line := rest[:idx]
		record, err := codec.Decode(line)
		if err != nil {
			return nil, errors.NewCorruptError(err, "Replay", "").WithOp("Replay")
		}

		entries = append(entries, Entry{Offset: offset, Record: record})
		offset += int64(idx) + 1
	}

	return entries, nil
}

// seal closes the active file handle and reopens the segment read-only,
// memory-mapping it for the read path sealed segments use.
func (s *Segment) seal() error {
	if !s.active {
		return nil
	}

	if err := s.file.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close segment before sealing").WithPath(s.path)
	}

	sealed, err := openSealed(s.path, s.id)
	if err != nil {
		return err
	}

	s.file = sealed.file
	s.mmap = sealed.mmap
	s.active = false
	return nil
}

// Close releases the segment's file handle and, if mapped, its mmap.
func (s *Segment) Close() error {
	if s.mmap != nil {
		if err := s.mmap.UnsafeUnmap(); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to unmap segment").WithPath(s.path)
		}
	}
	return s.file.Close()
}

// sliceFrom returns the segment's bytes from offset to its current end,
// from the mmap for a sealed segment or via a direct read for the active
// one (whose backing mmap, if any, would go stale on the next append).
func (s *Segment) sliceFrom(offset int64) ([]byte, error) {
	if offset < 0 || offset > s.size {
		return nil, errors.NewStorageError(
			fmt.Errorf("offset %d out of range [0,%d]", offset, s.size), errors.ErrorCodeIO, "invalid read offset",
		).WithSegmentID(int(s.id)).WithOffset(int(offset)).WithPath(s.path)
	}

	if s.mmap != nil {
		return s.mmap[offset:s.size], nil
	}

	buf := make([]byte, s.size-offset)
	if _, err := s.file.ReadAt(buf, offset); err != nil && err != io.EOF {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read segment").
			WithSegmentID(int(s.id)).WithOffset(int(offset)).WithPath(s.path)
	}

	return buf, nil
}
