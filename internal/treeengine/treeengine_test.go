package treeengine_test

import (
	"context"
	"testing"

	"github.com/ignitedb/ignite/internal/treeengine"
	igniteerrors "github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTree(t *testing.T) *treeengine.Tree {
	t.Helper()

	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()

	tree, err := treeengine.Open(context.Background(), &treeengine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })
	return tree
}

func TestTreeSetGetRemove(t *testing.T) {
	ctx := context.Background()
	tree := openTree(t)

	require.NoError(t, tree.Set(ctx, "a", "1"))

	v, ok, err := tree.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	require.NoError(t, tree.Remove(ctx, "a"))

	_, ok, err = tree.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTreeRemoveMissingKeyFailsNotFound(t *testing.T) {
	tree := openTree(t)

	err := tree.Remove(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, igniteerrors.IsNotFound(err))
}

func TestTreeGetMissingKey(t *testing.T) {
	tree := openTree(t)

	_, ok, err := tree.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, ok)
}
