// Package options provides data structures and functions for configuring
// the Ignite database. It defines various parameters that control Ignite's
// storage behavior, performance, and maintenance operations, such as
// directory paths, segment characteristics, and compaction intervals.
package options

import (
	"strings"
	"time"
)

// EngineKind selects which Engine implementation backs a store: the native
// log-structured engine, or the adapter over an ordered-tree backend.
type EngineKind string

const (
	// EngineKindLSKV is the native log-structured engine (spec §4.4).
	EngineKindLSKV EngineKind = "kvs"

	// EngineKindTree is the ordered-tree backend adapter (spec §4.5).
	EngineKindTree EngineKind = "sled"
)

// Defines configurable parameters for each segment.
// It provides fine-grained control over segment behavior, performance, and resource utilization.
type segmentOptions struct {
	// Records a target maximum segment size. The segment registry does not
	// read it: segments are not rotated by size, and a new segment is
	// created only by compaction.
	//
	//  - Default: 1GB
	//  - Maximum: 4GB
	//  - Minimum: 512MB
	Size uint64 `json:"maxSegmentSize"`

	// Records a segment subdirectory. The segment registry does not read
	// it: segment files are stored directly in Options.DataDir.
	//
	// Default: "/segments"
	Directory string `json:"directory"`

	// Defines the filename prefix for segment files.
	// Final filename will be: `<prefix><20-digit zero-padded id>.log`
	//
	// Default: "segment"
	//
	// Example: If Prefix is "mydata", the first segment file is "mydata00000000000000000000.log".
	Prefix string `json:"prefix"`
}

// Defines the configuration parameters for Ignite DB.
// It provides control over storage, performance and maintenance aspects.
type Options struct {
	// Specifies the base path where files will be stored.
	//
	// Default: "/var/lib/ignitedb"
	DataDir string `json:"dataDir"`

	// Selects the engine implementation. Default: EngineKindLSKV.
	Engine EngineKind `json:"engine"`

	// Records a compaction interval. No component reads it: there is no
	// time-based compaction, only the garbage-ratio trigger checked on
	// every set and at close.
	//
	// Default: 5h
	CompactInterval time.Duration `json:"compactInterval"`

	// CompactionGarbageRatio is the garbage/live-key ratio that triggers a
	// compaction from within set, and once more at close; remove never
	// compacts (spec §4.4: "garbage > index.size()/4").
	// A ratio of 0.25 reproduces that threshold exactly.
	//
	// Default: 0.25
	CompactionGarbageRatio float64 `json:"compactionGarbageRatio"`

	// ListenAddr is the address the KV wire-protocol service binds to.
	//
	// Default: "127.0.0.1:4000"
	ListenAddr string `json:"listenAddr"`

	// AdminAddr is the address the optional HTTP admin surface binds to.
	// Empty disables the admin surface.
	AdminAddr string `json:"adminAddr"`

	// Configures segment management including size limits and naming convention.
	SegmentOptions *segmentOptions `json:"segmentOptions"`
}

// OptionFunc is a function type that modifies the Ignite system's configuration.
type OptionFunc func(*Options)

// Applies a predefined set of default configuration values to the Options struct.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.Engine = opts.Engine
		o.SegmentOptions = opts.SegmentOptions
		o.CompactInterval = opts.CompactInterval
		o.CompactionGarbageRatio = opts.CompactionGarbageRatio
		o.ListenAddr = opts.ListenAddr
		o.AdminAddr = opts.AdminAddr
	}
}

// Sets the primary data directory for Ignite.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets which Engine implementation backs the store.
func WithEngine(kind EngineKind) OptionFunc {
	return func(o *Options) {
		if kind == EngineKindLSKV || kind == EngineKindTree {
			o.Engine = kind
		}
	}
}

// Sets the interval at which Ignite performs compaction operations.
func WithCompactInterval(interval time.Duration) OptionFunc {
	return func(o *Options) {
		if interval > 0 {
			o.CompactInterval = interval
		}
	}
}

// Sets the garbage/live-key ratio that triggers compaction from set and close.
func WithCompactionGarbageRatio(ratio float64) OptionFunc {
	return func(o *Options) {
		if ratio > 0 {
			o.CompactionGarbageRatio = ratio
		}
	}
}

// Sets the address the wire-protocol service listens on.
func WithListenAddr(addr string) OptionFunc {
	return func(o *Options) {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			o.ListenAddr = addr
		}
	}
}

// Sets the address the HTTP admin surface listens on. Empty disables it.
func WithAdminAddr(addr string) OptionFunc {
	return func(o *Options) {
		o.AdminAddr = strings.TrimSpace(addr)
	}
}

// Sets the directory specifically for storing segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.SegmentOptions.Directory = directory
		}
	}
}

// Sets the file name prefix for segment files.
func WithSegmentPrefix(prefix string) OptionFunc {
	return func(o *Options) {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" {
			o.SegmentOptions.Prefix = prefix
		}
	}
}

// Sets the maximum size of individual segment files.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentSize && size <= MaxSegmentSize {
			o.SegmentOptions.Size = size
		}
	}
}
