// Package codec serializes and deserializes the per-operation records that
// make up a log segment. Each record is a tagged variant, Set or Remove,
// written as one self-delimited line: a JSON object followed by the record
// separator byte (newline). JSON's string escaping guarantees the separator
// never appears inside an encoded payload, and decoding a complete line is
// total, so the two properties the on-disk format requires come for free
// from the standard library encoder rather than a hand-rolled one.
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/ignitedb/ignite/pkg/errors"
)

// Tag identifies which operation a Record represents.
type Tag string

const (
	TagSet    Tag = "set"
	TagRemove Tag = "remove"
)

// Separator terminates every encoded record on disk. The wire protocol in
// internal/wire frames messages with a length prefix instead.
const Separator = '\n'

// Record is the decoded form of one log line. Value is unused for Remove.
type Record struct {
	Tag   Tag    `json:"tag"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// NewSet builds a Set record.
func NewSet(key, value string) Record {
	return Record{Tag: TagSet, Key: key, Value: value}
}

// NewRemove builds a Remove record.
func NewRemove(key string) Record {
	return Record{Tag: TagRemove, Key: key}
}

// Encode serializes r as a single line terminated by Separator. The
// returned length is exactly what must be written to, and later read back
// from, the segment file for the record to round-trip.
func Encode(r Record) ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, errors.NewMalformedRecordError(err).WithKey(r.Key)
	}

	out := make([]byte, 0, len(body)+1)
	out = append(out, body...)
	out = append(out, Separator)
	return out, nil
}

// Decode parses a single line with its trailing separator already stripped.
// Passing partial bytes (a line with no terminator yet observed) is a
// caller error; Decode has no way to distinguish that from a short but
// complete encoding.
func Decode(line []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(line, &r); err != nil {
		return Record{}, errors.NewMalformedRecordError(err)
	}

	switch r.Tag {
	case TagSet, TagRemove:
	default:
		return Record{}, errors.NewMalformedRecordError(nil).WithKey(r.Key)
	}

	if r.Key == "" {
		return Record{}, errors.NewMalformedRecordError(nil)
	}

	return r, nil
}

// SplitLine trims a single trailing Separator from a raw segment line. It
// reports false if the line isn't terminated, signalling a truncated
// trailing record that replay must tolerate rather than reject.
func SplitLine(raw []byte) ([]byte, bool) {
	if len(raw) == 0 || raw[len(raw)-1] != Separator {
		return nil, false
	}
	return bytes.TrimSuffix(raw, []byte{Separator}), true
}
