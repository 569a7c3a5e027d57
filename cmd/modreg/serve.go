// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/modreg/internal/config"
	"github.com/holomush/modreg/internal/watch"
)

// serveConfig holds configuration for the serve command.
type serveConfig struct {
	debounce time.Duration
	noWatch  bool
}

func newServeCmd(deps *Deps) *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Boot modules and keep the registry running",
		Long: `Boot the installed modules, expose metrics and health endpoints and reload
the registry whenever a search directory changes. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg, deps)
		},
	}

	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().DurationVar(&cfg.debounce, "debounce", watch.DefaultDebounce, "quiet period before reloading after a change")
	cmd.Flags().BoolVar(&cfg.noWatch, "no-watch", false, "do not reload on directory changes")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *serveConfig, deps *Deps) error {
	a, err := setup(cmd, deps)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := a.registry
	if err := r.Boot(ctx); err != nil {
		return err
	}

	var ready atomic.Bool
	var obsServer ObservabilityServer
	if addr := a.cfg.Metrics.Addr; addr != "" {
		obsServer = deps.ObservabilityServerFactory(addr, ready.Load)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("SERVER_START_FAILED").With("addr", addr).Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	watchDone := make(chan struct{})
	if cfg.noWatch {
		close(watchDone)
	} else {
		w, err := watch.New(r.Dirs(), func(ctx context.Context) error {
			if err := r.Reload(ctx); err != nil {
				return err
			}
			return r.Boot(ctx)
		}, watch.Options{Debounce: cfg.debounce})
		if err != nil {
			stopServer(obsServer)
			return err
		}
		go func() {
			defer close(watchDone)
			if err := w.Run(ctx); err != nil {
				slog.Error("watcher stopped", "error", err)
				cancel()
			}
		}()
	}

	ready.Store(true)
	cmd.Println("modreg serving")
	slog.Info("modreg ready",
		"modules", len(r.All()),
		"installed", len(r.Installed()),
		"dirs", r.Dirs(),
	)

	<-ctx.Done()
	slog.Info("shutting down...")
	ready.Store(false)

	<-watchDone
	stopServer(obsServer)

	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errChan <-chan error, name string) {
	select {
	case err, ok := <-errChan:
		if ok && err != nil {
			slog.Error("server error", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

func stopServer(s ObservabilityServer) {
	if s == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}
