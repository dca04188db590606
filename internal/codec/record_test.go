package codec_test

import (
	"bytes"
	"testing"

	"github.com/ignitedb/ignite/internal/codec"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []codec.Record{
		codec.NewSet("a", "1"),
		codec.NewSet("key with spaces", "value\twith\ttabs"),
		codec.NewRemove("a"),
		codec.NewSet("unicode", "héllo wörld 日本語"),
	}

	for _, want := range records {
		encoded, err := codec.Encode(want)
		require.NoError(t, err)
		require.Equal(t, byte(codec.Separator), encoded[len(encoded)-1])

		line, ok := codec.SplitLine(encoded)
		require.True(t, ok)

		got, err := codec.Decode(line)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestEncodeNeverEmitsSeparatorInPayload(t *testing.T) {
	encoded, err := codec.Encode(codec.NewSet("k", "line1\nline2"))
	require.NoError(t, err)

	line, ok := codec.SplitLine(encoded)
	require.True(t, ok)
	require.False(t, bytes.ContainsRune(line, codec.Separator))

	got, err := codec.Decode(line)
	require.NoError(t, err)
	require.Equal(t, "line1\nline2", got.Value)
}

func TestDecodeMalformedRecord(t *testing.T) {
	_, err := codec.Decode([]byte("not json"))
	require.Error(t, err)
	require.True(t, errors.IsEngineError(err))

	ee, ok := errors.AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, errors.ErrorCodeMalformedRecord, ee.Code())
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := codec.Decode([]byte(`{"tag":"update","key":"a"}`))
	require.Error(t, err)
}

func TestSplitLineRejectsUnterminated(t *testing.T) {
	_, ok := codec.SplitLine([]byte(`{"tag":"set","key":"a","value":"1"}`))
	require.False(t, ok)
}
