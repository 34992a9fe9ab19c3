// # cmd/hlsense/serve.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hlsense/internal/core/config"
	"hlsense/internal/core/watcher"
	"hlsense/internal/shared/observability"
)

// ServeCmd keeps the workspace index current and serves /metrics and
// /health until interrupted.
type ServeCmd struct {
	Metrics string `help:"Metrics listen address; overrides observability.metrics_address"`
	NoWatch bool   `help:"Do not watch the workspace for changes" name:"no-watch"`
}

func (cmd *ServeCmd) Run(cli *Context) error {
	app, err := cli.app()
	if err != nil {
		return err
	}
	cfg := app.Config

	shutdownTracing, err := observability.InitTracing(cli, observability.TracingConfig{
		Endpoint:    cfg.Observability.OTLPEndpoint,
		ServiceName: cfg.Observability.ServiceName,
		Insecure:    cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	addr := cmd.Metrics
	if addr == "" {
		addr = cfg.Observability.MetricsAddress
	}
	var server *observability.Server
	if addr != "" {
		server = observability.NewServer(addr, app.Workspace)
		if err := server.Start(cli); err != nil {
			return err
		}
		fmt.Fprintf(cli.Out, "%s http://%s/metrics\n", dimColor("serving"), server.Addr())
	}

	var fw *watcher.Watcher
	if cfg.WatchEnabled() && !cmd.NoWatch {
		fw, err = app.Workspace.Watch(cli, cfg.Watch.Debounce)
		if err != nil {
			return err
		}
		defer fw.Close()
	}

	if cli.Config != "" {
		cw := config.NewWatcher(cli.Config, func(next *config.Config) {
			cli.setLogLevel(next.SlogLevel())
			if fw != nil {
				fw.SetDebounce(next.Watch.Debounce)
			}
			app.Workspace.SetReloadRate(next.Watch.ReloadRate, next.Watch.ReloadBurst)
			// Roots, cache and grammar changes need a restart.
			slog.Info("configuration reloaded", "log_level", next.Log.Level, "debounce", next.Watch.Debounce,
				"reload_rate", next.Watch.ReloadRate)
		})
		if err := cw.Start(cli); err != nil {
			return err
		}
		defer cw.Stop()
	}

	slog.Info("hlsense serving", "modules", len(app.Workspace.ModuleNames()), "roots", app.Workspace.Roots())
	<-cli.Done()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Stop(ctx)
	}
	return nil
}
