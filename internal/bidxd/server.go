// Package bidxd serves the engine over newline-delimited JSON-RPC 2.0 on
// TCP, plus a websocket endpoint for live search.
package bidxd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"bibleidx/internal/app"
	"bibleidx/internal/logging"
)

type Options struct {
	Listen string
	App    *app.App
	Logger *slog.Logger
}

type Server struct {
	opts    Options
	log     *slog.Logger
	methods map[string]handlerFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	listener  net.Listener
	closeOnce sync.Once
	closed    chan struct{}
}

func NewServer(opts Options) *Server {
	if opts.Listen == "" {
		opts.Listen = "127.0.0.1:7878"
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:    opts,
		log:     log,
		methods: NewHandlers(opts.App).methods(),
		ctx:     ctx,
		cancel:  cancel,
		closed:  make(chan struct{}),
	}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Run() error {
	if s == nil {
		return fmt.Errorf("server is nil")
	}
	if s.opts.App == nil {
		return fmt.Errorf("app is required")
	}

	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	if s.isClosed() {
		_ = ln.Close()
		return nil
	}
	s.log.Info("rpc listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	if s == nil {
		return nil
	}

	s.closeOnce.Do(func() {
		close(s.closed)
		s.cancel()
	})

	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	log := s.log.With("conn", uuid.NewString(), "remote", conn.RemoteAddr().String())
	ctx := logging.WithLogger(s.ctx, log)
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	defer func() { _ = w.Flush() }()

	for {
		line, err := readLine(r)
		if errors.Is(err, errLineTooLong) {
			log.Warn("dropping connection", "err", err)
			_ = writeLine(w, Response{
				JSONRPC: "2.0",
				ID:      json.RawMessage("null"),
				Error:   &ErrorObject{Code: codeInvalidRequest, Message: err.Error()},
			})
			return
		}
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = writeLine(w, Response{
				JSONRPC: "2.0",
				ID:      json.RawMessage("null"),
				Error:   &ErrorObject{Code: codeParseError, Message: "parse error"},
			})
			_ = w.Flush()
			continue
		}

		if len(req.ID) == 0 {
			// Notification: no response.
			_ = s.dispatch(ctx, req)
			continue
		}

		resp := s.dispatch(ctx, req)
		_ = writeLine(w, resp)
		_ = w.Flush()
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	resp := Response{
		JSONRPC: "2.0",
		ID:      req.ID,
	}

	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		resp.Error = &ErrorObject{Code: codeInvalidRequest, Message: "invalid jsonrpc version"}
		return resp
	}

	fn, ok := s.methods[req.Method]
	if !ok {
		resp.Error = &ErrorObject{Code: codeMethodNotFound, Message: "method not found"}
		return resp
	}

	result, err := fn(ctx, req.Params)
	if err != nil {
		var pe *paramsError
		if errors.As(err, &pe) {
			resp.Error = &ErrorObject{Code: codeInvalidParams, Message: pe.msg}
			return resp
		}
		logging.From(ctx, s.log).Warn("rpc failed", "method", req.Method, "err", err)
		resp.Error = &ErrorObject{Code: codeServerError, Message: err.Error()}
		return resp
	}
	resp.Result = result
	return resp
}
