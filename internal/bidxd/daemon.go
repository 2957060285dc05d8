package bidxd

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"bibleidx/internal/app"
	"bibleidx/internal/core/indexer"
	"bibleidx/internal/core/watch"
	"bibleidx/internal/logging"
)

// Daemon bundles what bidxd runs for one App: the RPC server, the live
// search socket when live_listen is set, and the corpus watcher when
// watch.enabled is set.
type Daemon struct {
	App  *app.App
	RPC  *Server
	Live *LiveServer

	log     *slog.Logger
	watcher *watch.Watcher
	stop    context.CancelFunc
}

func NewDaemon(a *app.App, log *slog.Logger) (*Daemon, error) {
	if log == nil {
		log = logging.Discard()
	}
	cfg := a.Config
	d := &Daemon{
		App: a,
		RPC: NewServer(Options{Listen: cfg.Listen, App: a, Logger: log}),
		log: log,
	}
	if strings.TrimSpace(cfg.LiveListen) != "" {
		d.Live = NewLiveServer(a, log.With("component", "live"))
	}
	if cfg.Watch.Enabled {
		w, err := d.newWatcher()
		if err != nil {
			return nil, err
		}
		d.watcher = w
	}
	return d, nil
}

func (d *Daemon) newWatcher() (*watch.Watcher, error) {
	a := d.App
	idx, err := a.WordIndex()
	if err != nil {
		return nil, err
	}
	wlog := d.log.With("component", "watch")
	ctx, stop := context.WithCancel(context.Background())
	d.stop = stop
	rebuild := watch.Reindex(ctx, a.Source, idx, indexer.Options{Logger: wlog},
		func(st indexer.Stats) {
			a.Engine.Invalidate()
			wlog.Info("corpus reindexed", "indexed", st.Indexed, "removed", st.Removed)
		})
	return watch.NewWatcher(a.Config.Corpus, watch.Options{
		Debounce: a.Config.Watch.Debounce(),
		Logger:   wlog,
		OnChange: func(names []string) {
			a.CorpusChanged()
			rebuild(names)
		},
	})
}

// Run serves until ctx is done or a component fails, then closes every
// component.
func (d *Daemon) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(d.RPC.Run)
	if d.Live != nil {
		g.Go(func() error { return d.Live.Run(d.App.Config.LiveListen) })
	}
	if d.watcher != nil {
		g.Go(func() error { return d.watcher.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		return d.Close()
	})
	return g.Wait()
}

func (d *Daemon) Close() error {
	if d.stop != nil {
		d.stop()
	}
	if d.watcher != nil {
		_ = d.watcher.Close()
	}
	if d.Live != nil {
		_ = d.Live.Close()
	}
	return d.RPC.Close()
}
