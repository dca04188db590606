// Package treeengine adapts an ordered-tree backend (bbolt) to the
// engine.Engine contract, implementing spec.md §4.5's second engine
// variant. It lets the service layer dispatch to either the native LSKV
// engine or this adapter identically.
package treeengine

import (
	"context"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// bucketName is the single bbolt bucket every key/value pair lives in.
// The store has no secondary indexes or range-scan surface, so one flat
// bucket is sufficient.
var bucketName = []byte("ignite")

// DataFile is the bbolt database filename created under Options.DataDir.
const DataFile = "tree.db"

// Tree wraps a bbolt.DB as an engine.Engine.
type Tree struct {
	db  *bbolt.DB
	log *zap.SugaredLogger
}

// Config holds the parameters needed to open a Tree engine.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// Open opens (creating if necessary) the bbolt database under
// Options.DataDir and ensures the key/value bucket exists.
func Open(ctx context.Context, config *Config) (*Tree, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewEngineError(nil, errors.ErrorCodeInvalidInput, "tree engine configuration is required").WithOp("Open")
	}

	path := filepath.Join(config.Options.DataDir, DataFile)
	config.Logger.Infow("opening tree engine", "path", path)

	if err := os.MkdirAll(config.Options.DataDir, 0755); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, config.Options.DataDir)
	}

	db, err := bbolt.Open(path, 0644, nil)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open tree database").WithPath(path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to create tree bucket").WithPath(path)
	}

	return &Tree{db: db, log: config.Logger}, nil
}

// Set inserts key/value and flushes, per spec.md §4.5: insert then flush.
func (t *Tree) Set(ctx context.Context, key, value string) error {
	err := t.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return errors.NewEngineError(err, errors.ErrorCodeIO, "failed to set key").WithOp("Set").WithKey(key)
	}
	return nil
}

// Get looks up key and decodes its bytes as UTF-8, per spec.md §4.5.
func (t *Tree) Get(ctx context.Context, key string) (string, bool, error) {
	var value []byte

	err := t.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, errors.NewEngineError(err, errors.ErrorCodeIO, "failed to get key").WithOp("Get").WithKey(key)
	}

	if value == nil {
		return "", false, nil
	}

	if !utf8.Valid(value) {
		return "", false, errors.NewFromUTF8Error(nil, key)
	}

	return string(value), true, nil
}

// Remove deletes key, failing NotFound if it had no prior value, then
// flushes, per spec.md §4.5.
func (t *Tree) Remove(ctx context.Context, key string) error {
	var existed bool

	err := t.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		existed = bucket.Get([]byte(key)) != nil
		if !existed {
			return nil
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return errors.NewEngineError(err, errors.ErrorCodeIO, "failed to remove key").WithOp("Remove").WithKey(key)
	}

	if !existed {
		return errors.NewKeyNotFoundEngineError("Remove", key)
	}

	return nil
}

// Close releases the underlying bbolt database.
func (t *Tree) Close() error {
	t.log.Infow("closing tree engine")
	return t.db.Close()
}
