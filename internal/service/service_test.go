package service_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ignitedb/ignite/internal/engine"
	"github.com/ignitedb/ignite/internal/service"
	"github.com/ignitedb/ignite/internal/wire"
	"github.com/ignitedb/ignite/pkg/options"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startServer(t *testing.T) string {
	t.Helper()

	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()

	eng, err := engine.Open(context.Background(), &engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	srv, err := service.New(&service.Config{Addr: "127.0.0.1:0", Engine: eng, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)

	go func() {
		go func() {
			for srv.Addr() == nil {
				time.Sleep(time.Millisecond)
			}
			ready <- srv.Addr().String()
		}()
		srv.ListenAndServe(ctx)
	}()

	addr := <-ready
	t.Cleanup(func() {
		cancel()
		srv.Close()
		eng.Close()
	})

	return addr
}

func roundTrip(t *testing.T, addr string, cmd wire.Command) wire.Response {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, wire.WriteCommand(conn, cmd))

	resp, err := wire.ReadResponse(conn)
	require.NoError(t, err)
	return resp
}

// S5: set x=y, get x -> y, rm x -> Null, rm x -> NotFound.
func TestServiceScenarioS5(t *testing.T) {
	addr := startServer(t)

	resp := roundTrip(t, addr, wire.Command{Kind: wire.CommandSet, Key: "x", Value: "y"})
	require.Equal(t, wire.NullResponse(), resp)

	resp = roundTrip(t, addr, wire.Command{Kind: wire.CommandGet, Key: "x"})
	require.Equal(t, wire.ValueResponse("y"), resp)

	resp = roundTrip(t, addr, wire.Command{Kind: wire.CommandRemove, Key: "x"})
	require.Equal(t, wire.NullResponse(), resp)

	resp = roundTrip(t, addr, wire.Command{Kind: wire.CommandRemove, Key: "x"})
	require.Equal(t, wire.ErrorResponse(wire.ErrorNotFound), resp)
}

func TestServiceGetMissingKeyRespondsNotFound(t *testing.T) {
	addr := startServer(t)

	resp := roundTrip(t, addr, wire.Command{Kind: wire.CommandGet, Key: "missing"})
	require.Equal(t, wire.ErrorResponse(wire.ErrorNotFound), resp)
}
