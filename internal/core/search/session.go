package search

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bibleidx/internal/core/group"
)

const DefaultDebounce = 300 * time.Millisecond

// Scanner runs one search request. *Engine implements it.
type Scanner interface {
	Scan(ctx context.Context, req Request) ([]Result, error)
}

// State is what a Session publishes to its observer.
type State struct {
	Query      string      `json:"query"`
	Group      group.Group `json:"group"`
	Mode       Mode        `json:"mode"`
	Results    []Result    `json:"results"`
	Searching  bool        `json:"searching"`
	Generation uint64      `json:"generation"`
}

type SessionOptions struct {
	Debounce time.Duration
	Limit    int
	Logger   *slog.Logger
	// OnUpdate receives every published state. Calls are serialized and
	// never go backwards in Generation. It must not call back into the
	// Session synchronously.
	OnUpdate func(State)
}

// Session is a single logical query stream: typing is debounced, a scope or
// mode change rescans immediately, and only the newest request may publish.
type Session struct {
	scanner  Scanner
	delay    time.Duration
	limit    int
	log      *slog.Logger
	onUpdate func(State)

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	timer  *time.Timer
	closed bool

	notifyMu sync.Mutex
	notified uint64
}

func NewSession(s Scanner, opts SessionOptions) *Session {
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		scanner:  s,
		delay:    delay,
		limit:    opts.Limit,
		log:      log,
		onUpdate: opts.OnUpdate,
		state:    State{Group: group.All, Mode: ModePhrase},
	}
}

// SetQuery replaces the query. The pending or running search is cancelled;
// an empty query clears results at once, anything else is scanned after the
// debounce delay.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Query = q
	gen := s.supersedeLocked()
	if strings.TrimSpace(q) == "" {
		s.state.Results = nil
		s.state.Searching = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return
	}
	s.timer = time.AfterFunc(s.delay, func() { s.run(gen) })
	s.mu.Unlock()
}

// SetGroup changes the search scope and rescans without debounce.
func (s *Session) SetGroup(g group.Group) {
	if g == "" {
		g = group.All
	}
	s.mu.Lock()
	s.state.Group = g
	s.mu.Unlock()
	s.rescan()
}

// SetMode changes the match mode and rescans without debounce.
func (s *Session) SetMode(m Mode) {
	if m == "" {
		m = ModePhrase
	}
	s.mu.Lock()
	s.state.Mode = m
	s.mu.Unlock()
	s.rescan()
}

// Close cancels any pending or running search. Nothing is published after
// Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.supersedeLocked()
	s.state.Searching = false
	s.mu.Unlock()

	// wait out a publish that passed its closed check
	s.notifyMu.Lock()
	s.notifyMu.Unlock() //nolint:staticcheck
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) rescan() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	gen := s.supersedeLocked()
	if strings.TrimSpace(s.state.Query) == "" {
		s.state.Searching = false
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return
	}
	s.mu.Unlock()
	go s.run(gen)
}

func (s *Session) run(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	req := Request{Query: s.state.Query, Group: s.state.Group, Mode: s.state.Mode, Limit: s.limit}
	s.state.Searching = true
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	results, err := s.scanner.Scan(ctx, req)

	s.mu.Lock()
	if s.closed || gen != s.gen || ctx.Err() != nil {
		s.mu.Unlock()
		cancel()
		return
	}
	if err != nil {
		s.log.Warn("search failed", "query", req.Query, "group", req.Group, "mode", req.Mode, "err", err)
		results = nil
	}
	s.state.Results = results
	s.state.Searching = false
	s.cancel = nil
	snap = s.snapshotLocked()
	s.mu.Unlock()
	cancel()
	s.publish(snap)
}

// supersedeLocked invalidates every outstanding request and returns the
// new generation.
func (s *Session) supersedeLocked() uint64 {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	return s.gen
}

func (s *Session) snapshotLocked() State {
	st := s.state
	st.Generation = s.gen
	if st.Results != nil {
		st.Results = append([]Result(nil), st.Results...)
	}
	return st
}

func (s *Session) publish(st State) {
	if s.onUpdate == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if st.Generation < s.notified {
		return
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.notified = st.Generation
	s.onUpdate(st)
}
