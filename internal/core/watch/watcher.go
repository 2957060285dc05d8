// Package watch follows a corpus directory and reacts to document changes
// after a quiet period.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bibleidx/internal/core/corpus"
	"bibleidx/internal/core/indexer"
)

type Watcher struct {
	dirAbs    string
	log       *slog.Logger
	debouncer *Debouncer

	watcher   *fsnotify.Watcher
	closeOnce sync.Once
	closed    chan struct{}
}

type Options struct {
	Debounce time.Duration
	Logger   *slog.Logger
	// OnChange receives the base names of changed corpus documents.
	OnChange func(names []string)
}

func NewWatcher(dir string, opts Options) (*Watcher, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("corpus dir is required")
	}
	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	dirAbs = filepath.Clean(dirAbs)

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dirAbs); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		dirAbs:    dirAbs,
		log:       log,
		debouncer: NewDebouncer(opts.Debounce),
		watcher:   fsw,
		closed:    make(chan struct{}),
	}
	if opts.OnChange != nil {
		w.debouncer.OnFire(opts.OnChange)
	}
	return w, nil
}

func (w *Watcher) Dir() string {
	if w == nil {
		return ""
	}
	return w.dirAbs
}

func (w *Watcher) Debounce() time.Duration {
	if w == nil {
		return 0
	}
	return w.debouncer.Delay()
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() {
		close(w.closed)
		w.debouncer.Stop()
	})
	if w.watcher == nil {
		return nil
	}
	return w.watcher.Close()
}

// Run dispatches filesystem events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.watcher == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.closed:
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "dir", w.dirAbs, "err", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name, ok := w.documentName(ev.Name)
	if !ok {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debug("corpus document changed", "name", name, "op", ev.Op.String())
	w.debouncer.Push(name)
}

// documentName accepts only top-level, non-hidden .json files.
func (w *Watcher) documentName(abs string) (string, bool) {
	if strings.TrimSpace(abs) == "" {
		return "", false
	}
	abs = filepath.Clean(abs)
	if filepath.Dir(abs) != w.dirAbs {
		return "", false
	}
	base := filepath.Base(abs)
	if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), ".json") {
		return "", false
	}
	return base, true
}

// Reindex returns an OnChange callback that brings the word index up to
// date and then calls after with the build stats. Build errors are logged.
func Reindex(ctx context.Context, src corpus.Source, t indexer.Target, opts indexer.Options, after func(indexer.Stats)) func(names []string) {
	var mu sync.Mutex
	return func(names []string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		st, err := indexer.Build(ctx, src, t, opts)
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.Warn("reindex failed", "changed", names, "err", err)
			}
			return
		}
		if after != nil {
			after(st)
		}
	}
}
