// Command kvs-server runs the TCP wire-protocol front end over either the
// native LSKV engine or the ordered-tree adapter, per spec.md §6.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ignitedb/ignite/internal/engine"
	"github.com/ignitedb/ignite/internal/service"
	"github.com/ignitedb/ignite/internal/treeengine"
	"github.com/ignitedb/ignite/pkg/config"
	ignerrors "github.com/ignitedb/ignite/pkg/errors"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	kvsSubdir  = "kvstore"
	sledSubdir = "sled"
)

func main() {
	var (
		addr       string
		adminAddr  string
		engineFlag string
		dir        string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "kvs-server",
		Short: "Run the ignite key-value store as a TCP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), addr, adminAddr, engineFlag, dir, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", options.DefaultListenAddr, "IP:PORT to listen on")
	cmd.Flags().StringVar(&adminAddr, "admin-addr", "", "IP:PORT for the optional HTTP admin surface (disabled if empty)")
	cmd.Flags().StringVar(&engineFlag, "engine", "", "engine backend: kvs or sled (auto-detected from dir if omitted)")
	cmd.Flags().StringVar(&dir, "dir", ".", "base directory containing the kvstore/ or sled/ data directory")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, adminAddr, engineFlag, dir, configPath string) error {
	log := logger.New("kvs-server")
	defer log.Sync()

	opts := options.NewDefaultOptions()

	if configPath != "" {
		file, err := config.Load(configPath)
		if err != nil {
			log.Errorw("failed to load config file", "error", err)
			os.Exit(1)
		}
		for _, apply := range file.OptionFuncs() {
			apply(&opts)
		}
		if engineFlag == "" {
			engineFlag = file.Engine
		}
	}

	// Flags override file values; a flag left at its default does not.
	if addr != options.DefaultListenAddr {
		options.WithListenAddr(addr)(&opts)
	}
	if adminAddr != "" {
		options.WithAdminAddr(adminAddr)(&opts)
	}

	kind, err := resolveEngine(dir, engineFlag)
	if err != nil {
		log.Errorw("engine resolution failed", "error", err)
		os.Exit(2)
	}
	opts.Engine = kind

	switch kind {
	case options.EngineKindTree:
		opts.DataDir = filepath.Join(dir, sledSubdir)
	default:
		opts.DataDir = filepath.Join(dir, kvsSubdir)
	}

	var eng engine.Engine
	var stats service.StatsProvider

	switch kind {
	case options.EngineKindTree:
		eng, err = treeengine.Open(ctx, &treeengine.Config{Options: &opts, Logger: log})
	default:
		var lskv *engine.LSKV
		lskv, err = engine.Open(ctx, &engine.Config{Options: &opts, Logger: log})
		eng = lskv
		stats = lskvStats{lskv}
	}
	if err != nil {
		if se, ok := ignerrors.AsStorageError(err); ok {
			log.Errorw("failed to open engine", "code", se.Code(), "path", se.Path(), "error", err)
		} else {
			log.Errorw("failed to open engine", "error", err)
		}
		os.Exit(1)
	}
	defer eng.Close()

	srv, err := service.New(&service.Config{Addr: opts.ListenAddr, Engine: eng, Logger: log})
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		return srv.ListenAndServe(groupCtx)
	})

	var admin *service.AdminServer
	if opts.AdminAddr != "" {
		admin = service.NewAdminServer(opts.AdminAddr, stats, log)
		group.Go(func() error {
			return admin.ListenAndServe()
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		srv.Close()
		if admin != nil {
			admin.Close()
		}
		return nil
	})

	return group.Wait()
}

// resolveEngine applies spec.md §4.6's engine-selection rule: an existing
// data directory wins; a conflicting --engine flag is a fatal mismatch.
func resolveEngine(dir, engineFlag string) (options.EngineKind, error) {
	_, kvsErr := os.Stat(filepath.Join(dir, kvsSubdir))
	_, sledErr := os.Stat(filepath.Join(dir, sledSubdir))

	var detected options.EngineKind
	switch {
	case kvsErr == nil:
		detected = options.EngineKindLSKV
	case sledErr == nil:
		detected = options.EngineKindTree
	}

	var specified options.EngineKind
	switch engineFlag {
	case "":
	case string(options.EngineKindLSKV):
		specified = options.EngineKindLSKV
	case string(options.EngineKindTree):
		specified = options.EngineKindTree
	default:
		return "", fmt.Errorf("invalid --engine value %q, must be %q or %q", engineFlag, options.EngineKindLSKV, options.EngineKindTree)
	}

	switch {
	case detected == "" && specified == "":
		return options.EngineKindLSKV, nil
	case detected == "" && specified != "":
		return specified, nil
	case detected != "" && specified == "":
		return detected, nil
	case detected == specified:
		return detected, nil
	default:
		return "", fmt.Errorf("engine %q already exists on disk, but --engine %q was specified", detected, specified)
	}
}

// lskvStats adapts *engine.LSKV to service.StatsProvider.
type lskvStats struct {
	eng *engine.LSKV
}

func (s lskvStats) Stats() service.Stats {
	return service.Stats{LiveKeys: s.eng.LiveKeys(), Garbage: s.eng.Garbage()}
}
