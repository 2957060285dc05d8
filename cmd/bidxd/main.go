package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bibleidx/internal/app"
	"bibleidx/internal/bidxd"
	"bibleidx/internal/config"
	"bibleidx/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml)")
	listen := flag.String("listen", "", "listen address (tcp), overrides the config file")
	live := flag.String("live", "", "live search websocket address, overrides the config file")
	watch := flag.Bool("watch", false, "reindex when corpus documents change")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *live != "" {
		cfg.LiveListen = *live
	}
	if *watch {
		cfg.Watch.Enabled = true
	}

	if err := run(cfg); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			_, _ = fmt.Fprintf(os.Stderr, "listen address in use: %s\nTry: -listen 127.0.0.1:7880\n", cfg.Listen)
			os.Exit(1)
		}
		fail(err)
	}
}

func run(cfg config.Config) error {
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	a, err := app.Open(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := bidxd.NewDaemon(a, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

func fail(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
