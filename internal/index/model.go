package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ValueLocation is the in-memory descriptor the Index stores for every live
// key: which segment holds the Set record that currently binds the key,
// and the byte offset that record starts at. It is meaningful only while
// the referenced segment remains registered.
type ValueLocation struct {
	SegmentID uint64
	Offset    int64
}

// Index is the in-memory hash table mapping every live key to the
// ValueLocation of the Set record that last bound it. It is never
// persisted; a fresh Index is always rebuilt by replaying segments at
// open.
type Index struct {
	log     *zap.SugaredLogger
	mu      sync.RWMutex
	entries map[string]ValueLocation
	garbage atomic.Int64
	closed  atomic.Bool
}

// Config encapsulates the parameters required to initialize an Index.
type Config struct {
	Logger *zap.SugaredLogger
}
