package segment_test

import (
	"os"
	"testing"

	"github.com/ignitedb/ignite/internal/codec"
	"github.com/ignitedb/ignite/internal/segment"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenCreatesInitialSegment(t *testing.T) {
	dir := t.TempDir()
	r, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.SegmentsInOrder(), 1)
	require.Equal(t, uint64(0), r.Active().ID())
}

func TestAppendAndReadAt(t *testing.T) {
	dir := t.TempDir()
	r, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer r.Close()

	segID, offset, err := r.AppendActive(codec.NewSet("a", "1"))
	require.NoError(t, err)

	record, err := r.ReadAt(segID, offset)
	require.NoError(t, err)
	require.Equal(t, codec.NewSet("a", "1"), record)
}

func TestReplayAcrossSegmentsSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	r1, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	_, _, err = r1.AppendActive(codec.NewSet("a", "1"))
	require.NoError(t, err)
	_, _, err = r1.AppendActive(codec.NewSet("b", "2"))
	require.NoError(t, err)
	require.NoError(t, r1.Close())

	r2, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer r2.Close()

	var entries []segment.Entry
	for _, seg := range r2.SegmentsInOrder() {
		e, err := seg.Replay()
		require.NoError(t, err)
		entries = append(entries, e...)
	}

	require.Len(t, entries, 2)
	require.Equal(t, "a", entries[0].Record.Key)
	require.Equal(t, "b", entries[1].Record.Key)
}

func TestCompactionSwapRetiresOldSegments(t *testing.T) {
	dir := t.TempDir()
	r, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer r.Close()

	_, _, err = r.AppendActive(codec.NewSet("a", "1"))
	require.NoError(t, err)

	newSeg, err := r.BeginCompaction()
	require.NoError(t, err)
	_, err = newSeg.Append(mustEncode(t, codec.NewSet("a", "1")))
	require.NoError(t, err)

	require.NoError(t, r.SwapCompacted(newSeg))
	require.Len(t, r.SegmentsInOrder(), 1)
	require.Equal(t, newSeg.ID(), r.Active().ID())
}

// A truncated trailing write (no terminator) is tolerated: replay on
// reopen returns only the complete records that precede it.
func TestReplayToleratesUnterminatedTrailingBytes(t *testing.T) {
	dir := t.TempDir()

	r, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	_, _, err = r.AppendActive(codec.NewSet("a", "1"))
	require.NoError(t, err)
	activePath := r.Active().Path()
	require.NoError(t, r.Close())

	f, err := os.OpenFile(activePath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte(`{"tag":"set","key":"b","value":"2"`)) // no terminator
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r2, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer r2.Close()

	var entries []segment.Entry
	for _, seg := range r2.SegmentsInOrder() {
		e, err := seg.Replay()
		require.NoError(t, err)
		entries = append(entries, e...)
	}

	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Record.Key)
}

// A fully-terminated but malformed record anywhere in the file is a fatal
// corruption, not a tolerated partial write.
func TestReplayFailsOnMidFileCorruption(t *testing.T) {
	dir := t.TempDir()

	r, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	_, _, err = r.AppendActive(codec.NewSet("a", "1"))
	require.NoError(t, err)
	activePath := r.Active().Path()
	require.NoError(t, r.Close())

	f, err := os.OpenFile(activePath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte("not json\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r2, err := segment.Open(dir, "", zap.NewNop().Sugar())
	require.NoError(t, err)
	defer r2.Close()

	_, err = r2.Active().Replay()
	require.Error(t, err)
	require.True(t, errors.IsCorrupt(err))
}

func mustEncode(t *testing.T, r codec.Record) []byte {
	t.Helper()
	b, err := codec.Encode(r)
	require.NoError(t, err)
	return b
}
