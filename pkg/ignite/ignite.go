// Package ignite provides a high-performance key/value data store
// designed for fast read and write operations, inspired by Bitcask.
// It combines an in-memory hash table (KeyDir/Index) with an append-only
// log structure on disk to achieve high throughput. It is designed for
// applications requiring fast read and write operations, such as caching,
// session management, and real-time data processing, aiming to provide a
// simple, efficient, and reliable solution for persistent key/value
// storage in Go applications.
package ignite

import (
	"context"

	"github.com/ignitedb/ignite/internal/engine"
	"github.com/ignitedb/ignite/internal/treeengine"
	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
)

// Instance is an embeddable handle to an ignite store, operating directly
// on a local data directory with no network hop — the backend the `kvs`
// CLI (spec.md §6) uses.
//
// Instance is the primary entry point for interacting with the Ignite
// store, providing methods for setting, getting, and deleting key-value
// pairs.
type Instance struct {
	engine  engine.Engine
	options *options.Options
}

// NewInstance opens (or creates) an Ignite store, selecting the native
// LSKV engine or the ordered-tree adapter per Options.Engine.
func NewInstance(ctx context.Context, service string, opts ...options.OptionFunc) (*Instance, error) {
	log := logger.NewDevelopment(service)

	defaultOpts := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	var (
		eng engine.Engine
		err error
	)

	switch defaultOpts.Engine {
	case options.EngineKindTree:
		eng, err = treeengine.Open(ctx, &treeengine.Config{Logger: log, Options: &defaultOpts})
	default:
		eng, err = engine.Open(ctx, &engine.Config{Logger: log, Options: &defaultOpts})
	}
	if err != nil {
		return nil, err
	}

	return &Instance{engine: eng, options: &defaultOpts}, nil
}

// Set stores a key-value pair in the database. If the key already exists,
// its value will be updated. The operation is durable and will be written
// to the append-only log before returning.
func (i *Instance) Set(ctx context.Context, key string, value string) error {
	if key == "" {
		return errors.NewRequiredFieldError("key")
	}
	return i.engine.Set(ctx, key, value)
}

// Get retrieves the value associated with the given key. The second
// return reports whether the key is currently bound.
func (i *Instance) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.NewRequiredFieldError("key")
	}
	return i.engine.Get(ctx, key)
}

// Delete removes a key-value pair from the database, failing with a
// not-found error if the key was not bound.
func (i *Instance) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewRequiredFieldError("key")
	}
	return i.engine.Remove(ctx, key)
}

// Close gracefully shuts down the Ignite DB instance, releasing all
// associated resources, flushing any pending writes, and running a final
// best-effort compaction if one is due.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
