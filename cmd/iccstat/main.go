// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command iccstat reports the headers of icc shared-memory regions and can
// export them as Prometheus metrics.
//
//	iccstat ticks quotes
//	iccstat -interval 1s -metrics-addr :9108 ticks
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"code.hybscloud.com/icc"
	"code.hybscloud.com/icc/metrics"
	"code.hybscloud.com/icc/shm"
)

const (
	Version = "0.1.0"
	appName = "iccstat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

// target is one opened region.
type target struct {
	name   string
	region icc.Region
}

// Stats re-reads the header on every call so that live counters are current.
// A region that does not inspect cleanly reports KindUnknown, which the
// collector skips.
func (t *target) Stats() icc.Stats {
	st, err := icc.Inspect(t.region.Bytes())
	if err != nil {
		return icc.Stats{Kind: icc.KindUnknown}
	}
	return st
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}
	if err := validateFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := setupLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	dir := shm.NewDir(cfg.Dir, shm.WithLogger(logger))

	targets := make([]*target, 0, len(cfg.Names))
	defer func() {
		for _, t := range targets {
			if err := t.region.Close(); err != nil {
				logger.Warn("close region", "name", t.name, "error", err)
			}
		}
	}()
	for _, name := range cfg.Names {
		r, err := dir.Open(name)
		if err != nil {
			return err
		}
		targets = append(targets, &target{name: name, region: r})
	}

	if err := report(stdout, targets); err != nil {
		return err
	}
	if cfg.Interval == 0 && cfg.MetricsAddr == "" {
		return nil
	}

	if cfg.MetricsAddr != "" {
		srv, err := serveMetrics(cfg, targets, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	var tick <-chan time.Time
	if cfg.Interval > 0 {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping", "reason", context.Cause(ctx))
			return nil
		case <-tick:
			if err := report(stdout, targets); err != nil {
				return err
			}
		}
	}
}

func serveMetrics(cfg *CLIConfig, targets []*target, logger *slog.Logger) (*http.Server, error) {
	collector := metrics.NewCollector(cfg.Namespace)
	for _, t := range targets {
		if err := collector.Register(t.name, t); err != nil {
			return nil, err
		}
	}
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, fmt.Errorf("register collector: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	return srv, nil
}

// report writes one line per region.
func report(w io.Writer, targets []*target) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tSLOTS\tSLOT_BYTES\tPRODUCED")
	for _, t := range targets {
		st, err := icc.Inspect(t.region.Bytes())
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", t.name, err)
			continue
		}
		produced := "-"
		if st.Kind != icc.KindVector {
			produced = fmt.Sprint(st.Produced)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", t.name, st.Kind, st.Len, st.ElemSize, produced)
	}
	return tw.Flush()
}
