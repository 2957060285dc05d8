package watch

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const defaultDebounce = 200 * time.Millisecond

// Debouncer coalesces pushed names and fires once the pushes go quiet for
// the delay. Each fire receives the distinct names, sorted.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	queued  map[string]struct{}
	onFire  func(names []string)
	stopped bool
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = defaultDebounce
	}
	return &Debouncer{
		delay:  delay,
		queued: map[string]struct{}{},
	}
}

func (d *Debouncer) Delay() time.Duration {
	if d == nil {
		return 0
	}
	return d.delay
}

func (d *Debouncer) OnFire(fn func(names []string)) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.onFire = fn
	d.mu.Unlock()
}

func (d *Debouncer) Push(name string) {
	if d == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.queued[name] = struct{}{}
	if d.timer != nil {
		_ = d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush fires immediately if anything is queued.
func (d *Debouncer) Flush() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.timer != nil {
		_ = d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire()
}

// Stop drops queued names; later pushes are ignored.
func (d *Debouncer) Stop() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		_ = d.timer.Stop()
		d.timer = nil
	}
	d.queued = map[string]struct{}{}
	d.mu.Unlock()
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	queued := d.queued
	d.queued = map[string]struct{}{}
	fn := d.onFire
	d.mu.Unlock()

	if fn == nil || len(queued) == 0 {
		return
	}

	names := make([]string, 0, len(queued))
	for n := range queued {
		names = append(names, n)
	}
	sort.Strings(names)
	fn(names)
}
