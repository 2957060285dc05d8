package bidxd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bibleidx/internal/app"
	"bibleidx/internal/core/group"
	"bibleidx/internal/core/search"
	"bibleidx/internal/logging"
)

// LiveInput is a client message on the live search socket. Type is one of
// "query", "group" or "mode"; Value carries the new setting.
type LiveInput struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// LiveOutput is a server message: a published search state, or an error
// caused by the last input.
type LiveOutput struct {
	Type  string        `json:"type"` // "state", "error"
	State *search.State `json:"state,omitempty"`
	Error string        `json:"error,omitempty"`
}

const (
	liveWriteWait = 10 * time.Second
	livePongWait  = 60 * time.Second
	livePingEvery = 54 * time.Second
)

// LiveServer drives one search.Session per websocket connection.
type LiveServer struct {
	app      *app.App
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	closed bool
}

func NewLiveServer(a *app.App, log *slog.Logger) *LiveServer {
	if log == nil {
		log = logging.Discard()
	}
	return &LiveServer{
		app: a,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Handler serves the socket at /live.
func (l *LiveServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", l.serveLive)
	return mux
}

// Run listens on addr until Close.
func (l *LiveServer) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: l.Handler(), ReadHeaderTimeout: 10 * time.Second}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ln.Close()
	}
	l.srv, l.ln = srv, ln
	l.mu.Unlock()
	l.log.Info("live search listening", "addr", ln.Addr().String())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (l *LiveServer) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

func (l *LiveServer) Close() error {
	l.mu.Lock()
	l.closed = true
	srv := l.srv
	l.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (l *LiveServer) serveLive(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Warn("live upgrade failed", "err", err)
		return
	}
	newLiveConn(l, conn).run()
}

type liveConn struct {
	conn    *websocket.Conn
	log     *slog.Logger
	session *search.Session

	mu     sync.Mutex
	latest *search.State
	errs   []string
	wake   chan struct{}
	done   chan struct{}
}

func newLiveConn(l *LiveServer, conn *websocket.Conn) *liveConn {
	c := &liveConn{
		conn: conn,
		log:  l.log.With("remote", conn.RemoteAddr().String()),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	cfg := l.app.Config.Search
	c.session = search.NewSession(l.app.Engine, search.SessionOptions{
		Debounce: cfg.Debounce(),
		Limit:    cfg.Limit,
		Logger:   c.log,
		OnUpdate: c.publish,
	})
	if m, err := search.ParseMode(cfg.Mode); err == nil {
		c.session.SetMode(m)
	}
	return c
}

// publish keeps only the newest state; the writer sends whatever is
// current when it wakes.
func (c *liveConn) publish(st search.State) {
	c.mu.Lock()
	c.latest = &st
	c.mu.Unlock()
	c.signal()
}

func (c *liveConn) fail(msg string) {
	c.mu.Lock()
	c.errs = append(c.errs, msg)
	c.mu.Unlock()
	c.signal()
}

func (c *liveConn) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *liveConn) run() {
	go c.writeLoop()
	c.readLoop()
	close(c.done)
	c.session.Close()
	_ = c.conn.Close()
}

func (c *liveConn) readLoop() {
	_ = c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var in LiveInput
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("live read ended", "err", err)
			}
			return
		}
		switch in.Type {
		case "query":
			c.session.SetQuery(in.Value)
		case "group":
			g, err := group.Parse(in.Value)
			if err != nil {
				c.fail(err.Error())
				continue
			}
			c.session.SetGroup(g)
		case "mode":
			m, err := search.ParseMode(in.Value)
			if err != nil {
				c.fail(err.Error())
				continue
			}
			c.session.SetMode(m)
		default:
			c.fail("unknown message type " + in.Type)
		}
	}
}

func (c *liveConn) writeLoop() {
	ticker := time.NewTicker(livePingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.wake:
			c.mu.Lock()
			st, errs := c.latest, c.errs
			c.latest, c.errs = nil, nil
			c.mu.Unlock()

			for _, msg := range errs {
				if !c.write(LiveOutput{Type: "error", Error: msg}) {
					return
				}
			}
			if st != nil && !c.write(LiveOutput{Type: "state", State: st}) {
				return
			}
		}
	}
}

func (c *liveConn) write(out LiveOutput) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	if err := c.conn.WriteJSON(out); err != nil {
		c.log.Debug("live write failed", "err", err)
		return false
	}
	return true
}
