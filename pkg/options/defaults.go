package options

import "time"

const (
	// Specifies the default base directory where IgniteDB will store its data files.
	// If no other directory is specified during initialization, this path will be used.
	DefaultDataDir = "/var/lib/ignitedb"

	// Defines the default value of Options.CompactInterval (5 hours). No
	// timer reads it: compaction runs only on the garbage-ratio trigger.
	DefaultCompactInterval = time.Hour * 5

	// Represents the minimum allowed size for a segment file in bytes (512MB).
	MinSegmentSize uint64 = 512 * 1024 * 1024

	// Represents the maximum allowed size for a segment file in bytes (4GB).
	MaxSegmentSize uint64 = 4 * 1024 * 1024 * 1024

	// Specifies the default target size for a new segment file in bytes (1GB).
	DefaultSegmentSize uint64 = 1 * 1024 * 1024 * 1024

	// Specifies the default value of the segment Directory option. The
	// segment registry does not read it: segment files live directly in
	// Options.DataDir.
	DefaultSegmentDirectory = "/segments"

	// Defines the default prefix for segment file names.
	// For example, the first segment file is named
	// "segment00000000000000000000.log" (see pkg/seginfo.GenerateName).
	DefaultSegmentPrefix = "segment"

	// DefaultEngine is the engine implementation used when none is specified.
	DefaultEngine = EngineKindLSKV

	// DefaultCompactionGarbageRatio reproduces the trigger named in spec.md
	// §4.4: compaction fires once garbage exceeds a quarter of live keys.
	DefaultCompactionGarbageRatio = 0.25

	// DefaultListenAddr is the address the wire-protocol service binds to
	// when none is specified.
	DefaultListenAddr = "127.0.0.1:4000"

	// DefaultAdminAddr is the address the optional HTTP admin surface binds
	// to when none is specified. Empty disables the admin surface.
	DefaultAdminAddr = ""
)

// Holds the default configuration settings for an IgniteDB instance.
var defaultOptions = Options{
	DataDir:                DefaultDataDir,
	Engine:                 DefaultEngine,
	CompactInterval:        DefaultCompactInterval,
	CompactionGarbageRatio: DefaultCompactionGarbageRatio,
	ListenAddr:             DefaultListenAddr,
	AdminAddr:              DefaultAdminAddr,
	SegmentOptions: &segmentOptions{
		Size:      DefaultSegmentSize,
		Prefix:    DefaultSegmentPrefix,
		Directory: DefaultSegmentDirectory,
	},
}

// NewDefaultOptions returns a fresh Options populated with the defaults.
// SegmentOptions is a pointer field, so callers get their own copy of it
// rather than sharing defaultOptions' — otherwise a WithSegmentPrefix (or
// -Dir/-Size) on one instance would leak into every other instance built
// from defaultOptions.
func NewDefaultOptions() Options {
	opts := defaultOptions
	segOpts := *defaultOptions.SegmentOptions
	opts.SegmentOptions = &segOpts
	return opts
}
