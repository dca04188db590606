package engine_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ignitedb/ignite/internal/engine"
	igniteerrors "github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openEngine(t *testing.T, dir string) *engine.LSKV {
	t.Helper()

	opts := options.NewDefaultOptions()
	opts.DataDir = dir

	e, err := engine.Open(context.Background(), &engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return e
}

// S1: set a=1, get a -> 1; get b -> not found.
func TestScenarioS1(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t, t.TempDir())
	defer e.Close()

	require.NoError(t, e.Set(ctx, "a", "1"))

	v, ok, err := e.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	_, ok, err = e.Get(ctx, "b")
	require.NoError(t, err)
	require.False(t, ok)
}

// S2: overwrite, remove, remove-again fails NotFound.
func TestScenarioS2(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t, t.TempDir())
	defer e.Close()

	require.NoError(t, e.Set(ctx, "a", "1"))
	require.NoError(t, e.Set(ctx, "a", "2"))

	v, ok, err := e.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", v)

	require.NoError(t, e.Remove(ctx, "a"))

	_, ok, err = e.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	err = e.Remove(ctx, "a")
	require.Error(t, err)
	require.True(t, igniteerrors.IsNotFound(err))
}

// S3: multiple keys survive a reopen of the same directory.
func TestScenarioS3Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	e1 := openEngine(t, dir)
	require.NoError(t, e1.Set(ctx, "a", "1"))
	require.NoError(t, e1.Set(ctx, "b", "2"))
	require.NoError(t, e1.Close())

	e2 := openEngine(t, dir)
	defer e2.Close()

	v, ok, err := e2.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	v, ok, err = e2.Get(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", v)
}

// S4: many overwrites of one key trigger compaction; only the latest value
// survives and is still reachable.
func TestScenarioS4CompactionReclaimsOverwrites(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	opts := options.NewDefaultOptions()
	opts.DataDir = dir
	opts.CompactionGarbageRatio = 0.25

	e, err := engine.Open(ctx, &engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	defer e.Close()

	const n = 1000
	for i := 1; i <= n; i++ {
		require.NoError(t, e.Set(ctx, "k", fmt.Sprintf("v_%d", i)))
	}

	v, ok, err := e.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fmt.Sprintf("v_%d", n), v)

	require.Less(t, e.LiveKeys(), int64(2))
}

func TestRemoveUnsetKeyFailsWithoutMutatingState(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t, t.TempDir())
	defer e.Close()

	err := e.Remove(ctx, "missing")
	require.Error(t, err)
	require.True(t, igniteerrors.IsNotFound(err))
	require.Equal(t, int64(0), e.LiveKeys())
}

func TestReplayIsIdempotentAcrossReopensWithoutMutation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	e1 := openEngine(t, dir)
	require.NoError(t, e1.Set(ctx, "a", "1"))
	require.NoError(t, e1.Close())

	e2 := openEngine(t, dir)
	require.NoError(t, e2.Close())

	e3 := openEngine(t, dir)
	defer e3.Close()

	v, ok, err := e3.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)
}
