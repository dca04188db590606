package wire_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ignitedb/ignite/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestCommandRoundTrip(t *testing.T) {
	commands := []wire.Command{
		{Kind: wire.CommandSet, Key: "a", Value: "1"},
		{Kind: wire.CommandGet, Key: "a"},
		{Kind: wire.CommandRemove, Key: "a"},
	}

	for _, want := range commands {
		var buf bytes.Buffer
		require.NoError(t, wire.WriteCommand(&buf, want))

		got, err := wire.ReadCommand(&buf)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("command round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	responses := []wire.Response{
		wire.NullResponse(),
		wire.ValueResponse("y"),
		wire.ErrorResponse(wire.ErrorNotFound),
	}

	for _, want := range responses {
		var buf bytes.Buffer
		require.NoError(t, wire.WriteResponse(&buf, want))

		got, err := wire.ReadResponse(&buf)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestReadCommandRejectsUnknownKind(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.WriteMessage(&buf, map[string]string{"kind": "bogus", "key": "a"}))

	_, err := wire.ReadCommand(&buf)
	require.Error(t, err)
}

func TestReadCommandRejectsEmptyKey(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, wire.WriteCommand(&buf, wire.Command{Kind: wire.CommandGet}))

	_, err := wire.ReadCommand(&buf)
	require.Error(t, err)
}
