package watch

import (
	"sync"
	"testing"
	"time"
)

type fired struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fired) record(names []string) {
	f.mu.Lock()
	f.calls = append(f.calls, names)
	f.mu.Unlock()
}

func (f *fired) snapshot() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

func TestDebounce_Coalesces(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var f fired
	d.OnFire(f.record)

	d.Push("John.json")
	d.Push("Acts.json")
	d.Push("John.json")
	time.Sleep(200 * time.Millisecond)

	calls := f.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected 1 fire, got %d", len(calls))
	}
	if len(calls[0]) != 2 || calls[0][0] != "Acts.json" || calls[0][1] != "John.json" {
		t.Fatalf("names=%v", calls[0])
	}
}

func TestDebounce_FlushAndStop(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var f fired
	d.OnFire(f.record)

	d.Flush()
	if len(f.snapshot()) != 0 {
		t.Fatal("flush fired with nothing queued")
	}

	d.Push("Ruth.json")
	d.Flush()
	if calls := f.snapshot(); len(calls) != 1 || calls[0][0] != "Ruth.json" {
		t.Fatalf("calls=%v", calls)
	}

	d.Stop()
	d.Push("Jude.json")
	d.Flush()
	if len(f.snapshot()) != 1 {
		t.Fatal("push after stop fired")
	}
}

func TestDebounce_DefaultDelay(t *testing.T) {
	if got := NewDebouncer(0).Delay(); got != defaultDebounce {
		t.Fatalf("delay=%v", got)
	}
	var d *Debouncer
	d.Push("x")
	d.Stop()
}
