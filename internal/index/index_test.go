package index_test

import (
	"testing"

	"github.com/ignitedb/ignite/internal/index"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.New(&index.Config{Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return idx
}

func TestPutGetDelete(t *testing.T) {
	idx := newIndex(t)

	_, ok := idx.Get("a")
	require.False(t, ok)

	overwrote := idx.Put("a", index.ValueLocation{SegmentID: 0, Offset: 10})
	require.False(t, overwrote)

	loc, ok := idx.Get("a")
	require.True(t, ok)
	require.Equal(t, index.ValueLocation{SegmentID: 0, Offset: 10}, loc)

	overwrote = idx.Put("a", index.ValueLocation{SegmentID: 0, Offset: 42})
	require.True(t, overwrote)

	require.Equal(t, 1, idx.Len())

	existed := idx.Delete("a")
	require.True(t, existed)
	require.Equal(t, 0, idx.Len())

	existed = idx.Delete("a")
	require.False(t, existed)
}

func TestGarbageCounter(t *testing.T) {
	idx := newIndex(t)
	require.Equal(t, int64(0), idx.Garbage())

	idx.IncrGarbage()
	idx.IncrGarbage()
	require.Equal(t, int64(2), idx.Garbage())

	idx.ResetGarbage()
	require.Equal(t, int64(0), idx.Garbage())
}

func TestKeysSnapshot(t *testing.T) {
	idx := newIndex(t)
	idx.Put("a", index.ValueLocation{})
	idx.Put("b", index.ValueLocation{})

	keys := idx.Keys()
	require.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestCloseIsIdempotentlyRejected(t *testing.T) {
	idx := newIndex(t)
	require.NoError(t, idx.Close())
	require.ErrorIs(t, idx.Close(), index.ErrIndexClosed)
}
