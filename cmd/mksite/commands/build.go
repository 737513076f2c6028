package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mksite/internal/builder"
	"git.home.luguber.info/inful/mksite/internal/config"
	"git.home.luguber.info/inful/mksite/internal/history"
	"git.home.luguber.info/inful/mksite/internal/logfields"
	"git.home.luguber.info/inful/mksite/internal/metrics"
	"git.home.luguber.info/inful/mksite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Config          string `arg:"" name:"config" help:"Site configuration file (.json, .yaml, .yml or .toml)"`
	SiteRoot        string `name:"site-root" help:"Override siteroot from the configuration"`
	BuildDir        string `name:"build-dir" help:"Override buildroot from the configuration"`
	Report          string `name:"report" help:"Write a JSON build report to this file"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics in text format to this file"`
	HistoryDB       string `name:"history-db" help:"Record the build in this SQLite history ledger"`
}

func (b *BuildCmd) Run(g *Global, _ *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return b.run(ctx, g)
}

func (b *BuildCmd) run(ctx context.Context, g *Global) error {
	cfg, err := config.Load(b.Config)
	if err != nil {
		return err
	}
	cfg, err = cfg.WithOverrides(b.SiteRoot, b.BuildDir)
	if err != nil {
		return err
	}
	s, err := site.New(cfg, time.Now())
	if err != nil {
		return err
	}

	opts := builder.Options{ReportPath: b.Report}

	var reg *prom.Registry
	if b.MetricsTextfile != "" {
		reg = prom.NewRegistry()
		opts.Recorder = metrics.NewPrometheusRecorder(reg)
	}

	if b.HistoryDB != "" {
		store, err := history.Open(b.HistoryDB)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				slog.Warn("Failed to close history ledger", logfields.Path(b.HistoryDB), logfields.Error(cerr))
			}
		}()
		opts.History = store
	}

	fmt.Fprintln(g.out(), "Starting mksite build")
	report, buildErr := builder.New(s, opts).Build(ctx)

	if reg != nil {
		if err := metrics.WriteTextfile(b.MetricsTextfile, reg); err != nil {
			if buildErr == nil {
				return err
			}
			slog.Warn("Failed to write metrics textfile", logfields.Path(b.MetricsTextfile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	fmt.Fprintf(g.out(), "Build succeeded: %s\n", report.Summary())
	return nil
}
