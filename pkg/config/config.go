// Package config loads the optional YAML file kvs-server accepts via
// --config, supplementing the flag/functional-options surface pkg/options
// already provides. OptionFuncs yields options only for fields the file
// sets. kvs-server applies them first and its flags after, so flags win:
// --addr and --admin-addr when given a non-default value, --engine when
// given at all, and --dir always (kvs-server derives the data directory
// from --dir, so a file's dataDir does not take effect there).
package config

import (
	"os"

	"github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/options"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of an ignite config file. Fields mirror
// options.Options; engine is a plain string here since YAML has no notion
// of options.EngineKind.
type File struct {
	DataDir                string  `yaml:"dataDir"`
	Engine                 string  `yaml:"engine"`
	ListenAddr             string  `yaml:"listenAddr"`
	AdminAddr              string  `yaml:"adminAddr"`
	CompactionGarbageRatio float64 `yaml:"compactionGarbageRatio"`
	SegmentSize            uint64  `yaml:"segmentSize"`
	SegmentDir             string  `yaml:"segmentDir"`
	SegmentPrefix          string  `yaml:"segmentPrefix"`
}

// Load reads and validates a config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read config file").WithPath(path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewConfigurationValidationError("file", err.Error())
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Validate checks the fields Load can't trust YAML's type system alone to
// enforce: an engine name, if given, that is a well-known one, a garbage
// ratio, if given, in (0, 1], and a non-empty dataDir.
func (f *File) Validate() error {
	if f.Engine != "" && f.Engine != string(options.EngineKindLSKV) && f.Engine != string(options.EngineKindTree) {
		return errors.NewFieldFormatError("engine", f.Engine, "one of \"kvs\", \"sled\"")
	}

	if f.CompactionGarbageRatio != 0 {
		if f.CompactionGarbageRatio <= 0 || f.CompactionGarbageRatio > 1 {
			return errors.NewFieldRangeError("compactionGarbageRatio", f.CompactionGarbageRatio, 0, 1)
		}
	}

	if f.DataDir == "" {
		return errors.NewRequiredFieldError("dataDir")
	}

	return nil
}

// OptionFuncs translates the file into the functional options pkg/options
// already defines, so callers fold file-provided values in before
// flag-provided ones without pkg/options needing to know config exists.
func (f *File) OptionFuncs() []options.OptionFunc {
	var opts []options.OptionFunc

	if f.DataDir != "" {
		opts = append(opts, options.WithDataDir(f.DataDir))
	}
	if f.Engine != "" {
		opts = append(opts, options.WithEngine(options.EngineKind(f.Engine)))
	}
	if f.ListenAddr != "" {
		opts = append(opts, options.WithListenAddr(f.ListenAddr))
	}
	if f.AdminAddr != "" {
		opts = append(opts, options.WithAdminAddr(f.AdminAddr))
	}
	if f.CompactionGarbageRatio != 0 {
		opts = append(opts, options.WithCompactionGarbageRatio(f.CompactionGarbageRatio))
	}
	if f.SegmentSize != 0 {
		opts = append(opts, options.WithSegmentSize(f.SegmentSize))
	}
	if f.SegmentDir != "" {
		opts = append(opts, options.WithSegmentDir(f.SegmentDir))
	}
	if f.SegmentPrefix != "" {
		opts = append(opts, options.WithSegmentPrefix(f.SegmentPrefix))
	}

	return opts
}
