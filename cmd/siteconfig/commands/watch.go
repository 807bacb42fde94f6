package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/siteconfig/internal/config"
	ferrors "git.home.luguber.info/inful/siteconfig/internal/foundation/errors"
	"git.home.luguber.info/inful/siteconfig/internal/logfields"
	"git.home.luguber.info/inful/siteconfig/internal/metrics"
	"git.home.luguber.info/inful/siteconfig/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this textfile after every reload" type:"path"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	if root.Config == "" {
		return ferrors.ConfigError("watch needs a configuration file (--config)").Build()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, g, root.Config)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, path string) error {
	reg := prom.NewRegistry()
	loader := config.NewLoader(config.WithRecorder(metrics.NewPrometheusRecorder(reg)))

	out := g.out()
	watcher, err := watch.New(path, loader, func(r watch.Result) {
		if r.Err != nil {
			_, _ = fmt.Fprintf(out, "✗ %s: %v\n", path, r.Err)
		} else {
			_, _ = fmt.Fprintf(out, "✓ %s is valid\n", path)
		}
		if w.MetricsFile == "" {
			return
		}
		if err := metrics.WriteTextfile(w.MetricsFile, reg); err != nil {
			slog.Warn("Failed to write metrics", logfields.Path(w.MetricsFile), logfields.Error(err))
		}
	})
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to start watcher").Build()
	}

	if err := watcher.Run(ctx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "watcher stopped").
			WithContext("path", path).
			Build()
	}
	return nil
}
