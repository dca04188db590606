// Package service implements the thin network front end:
// one TCP connection per request, dispatched through an engine.Engine and
// answered with a single framed wire.Response.
//
// The accept loop handles one connection fully before accepting the next,
// matching spec.md §5's single-threaded, blocking scheduling model: the
// engine itself has no concurrent entry points, so serializing connection
// handling here is what makes that guarantee hold without any locking
// inside the engine.
package service

import (
	"context"
	"net"

	"github.com/ignitedb/ignite/internal/engine"
	"github.com/ignitedb/ignite/internal/wire"
	"github.com/ignitedb/ignite/pkg/errors"
	"go.uber.org/zap"
)

// Server listens on a single address and serves requests against eng.
type Server struct {
	addr     string
	eng      engine.Engine
	log      *zap.SugaredLogger
	listener net.Listener
}

// Config holds the parameters required to construct a Server.
type Config struct {
	Addr   string
	Engine engine.Engine
	Logger *zap.SugaredLogger
}

// New constructs a Server without binding a listener yet.
func New(config *Config) (*Server, error) {
	if config == nil || config.Addr == "" || config.Engine == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "service configuration is required",
		).WithField("config").WithRule("required").WithProvided(config)
	}

	return &Server{addr: config.Addr, eng: config.Engine, log: config.Logger}, nil
}

// ListenAndServe binds the configured address and serves connections until
// ctx is cancelled or Close is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.NewEngineError(err, errors.ErrorCodeIO, "failed to bind listener").WithOp("ListenAndServe")
	}
	s.listener = ln

	s.log.Infow("service listening", "addr", s.addr)

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return errors.NewEngineError(err, errors.ErrorCodeIO, "accept failed").WithOp("ListenAndServe")
			}
		}

		s.handle(ctx, conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// Addr returns the bound listener's address, useful when Config.Addr used
// port 0 for an ephemeral port in tests.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// handle reads exactly one Command, dispatches it through the engine, and
// writes exactly one Response before closing the connection, per spec.md
// §4.6.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	cmd, err := wire.ReadCommand(conn)
	if err != nil {
		s.log.Errorw("failed to decode command", "error", err, "remote", conn.RemoteAddr())
		wire.WriteResponse(conn, wire.ErrorResponse(wire.ErrorInvalidCommand))
		return
	}

	resp := s.dispatch(ctx, cmd)

	if err := wire.WriteResponse(conn, resp); err != nil {
		s.log.Errorw("failed to write response", "error", err, "remote", conn.RemoteAddr())
	}
}

// dispatch maps one Command through the engine to a Response, per the
// table in spec.md §4.6.
func (s *Server) dispatch(ctx context.Context, cmd wire.Command) wire.Response {
	switch cmd.Kind {
	case wire.CommandSet:
		if err := s.eng.Set(ctx, cmd.Key, cmd.Value); err != nil {
			s.log.Errorw("set failed", "key", cmd.Key, "code", errors.GetErrorCode(err), "details", errors.GetErrorDetails(err))
			return wire.ErrorResponse(wire.ErrorOther)
		}
		return wire.NullResponse()

	case wire.CommandGet:
		value, ok, err := s.eng.Get(ctx, cmd.Key)
		if err != nil {
			s.log.Errorw("get failed", "key", cmd.Key, "code", errors.GetErrorCode(err), "details", errors.GetErrorDetails(err))
			return wire.ErrorResponse(wire.ErrorOther)
		}
		if !ok {
			return wire.ErrorResponse(wire.ErrorNotFound)
		}
		return wire.ValueResponse(value)

	case wire.CommandRemove:
		if err := s.eng.Remove(ctx, cmd.Key); err != nil {
			if errors.IsNotFound(err) {
				return wire.ErrorResponse(wire.ErrorNotFound)
			}
			s.log.Errorw("remove failed", "key", cmd.Key, "code", errors.GetErrorCode(err), "details", errors.GetErrorDetails(err))
			return wire.ErrorResponse(wire.ErrorOther)
		}
		return wire.NullResponse()

	default:
		return wire.ErrorResponse(wire.ErrorInvalidCommand)
	}
}
