package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/serveropenmc/openmc/internal/github"
	"github.com/serveropenmc/openmc/internal/poller"
	"github.com/serveropenmc/openmc/internal/stats"
)

var (
	flagInterval        time.Duration
	flagCleanupInterval time.Duration
	flagMetricsAddr     string
)

var (
	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openmc_watch_refresh_total",
		Help: "Completed watch refreshes by result.",
	}, []string{"result"})
	contributorsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "openmc_contributors",
		Help: "Contributors across the watched repositories at the last refresh.",
	})
	commitsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "openmc_commits",
		Help: "Commits of the watched repository at the last refresh.",
	})
	cacheEntriesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "openmc_cache_entries",
		Help: "Entries in the cache after the last cleanup.",
	})
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cache warm by refreshing on an interval",
	Long: "Refresh the summary, contributors and releases on an interval so the cache stays warm,\n" +
		"sweep expired entries periodically, and optionally serve Prometheus metrics.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := app.cfg.Watch.Interval
		if flagInterval > 0 {
			interval = flagInterval
		}
		addr := app.cfg.Watch.MetricsAddr
		if flagMetricsAddr != "" {
			addr = flagMetricsAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return fail(runWatch(ctx, interval, flagCleanupInterval, addr))
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagInterval, "interval", 0, "Refresh interval (default from config, 5m)")
	watchCmd.Flags().DurationVar(&flagCleanupInterval, "cleanup-interval", 30*time.Minute, "Cache cleanup interval")
	watchCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
}

// runWatch blocks until ctx is cancelled.
func runWatch(ctx context.Context, interval, cleanupInterval time.Duration, metricsAddr string) error {
	logger := app.logger

	if metricsAddr != "" {
		ln, err := net.Listen("tcp", metricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		logger.Info("serving metrics", "addr", ln.Addr().String())
	}

	onError := func(err error) {
		refreshTotal.WithLabelValues("error").Inc()
		if github.IsRateLimit(err) {
			logger.Warn("refresh rate limited, serving cached data", "error", err)
			return
		}
		logger.Error("refresh failed", "error", err)
	}

	refresher := poller.New("refresh", interval, refresh, poller.WithOnError(onError), poller.WithLogger(logger))
	cleaner := poller.New("cleanup", cleanupInterval, func(ctx context.Context) error {
		res := app.cache.Cleanup(ctx)
		cacheEntriesGauge.Set(float64(res.Kept))
		logger.Info("cache cleanup", "removed", res.Removed, "kept", res.Kept)
		return nil
	}, poller.WithLogger(logger))

	if err := refresher.Start(ctx); err != nil {
		return err
	}
	defer refresher.Stop()
	if err := cleaner.Start(ctx); err != nil {
		return err
	}
	defer cleaner.Stop()

	logger.Info("watching", "owner", app.cfg.Owner, "repo", app.cfg.Repo, "interval", interval)
	<-ctx.Done()
	return nil
}

// refresh reads everything the site shows through the cache.
func refresh(ctx context.Context) error {
	cfg := app.cfg
	summary, err := stats.Summary(ctx, app.gh, cfg.Owner, cfg.Repo, cfg.Org)
	if err != nil {
		return err
	}
	plugin, err := app.gh.Contributors(ctx, cfg.Owner, cfg.Repo)
	if err != nil {
		return err
	}
	website, err := app.gh.Contributors(ctx, cfg.Owner, cfg.WebsiteRepo)
	if err != nil {
		return err
	}
	if _, err := app.gh.PublishedReleases(ctx, cfg.Owner, cfg.Repo, 0); err != nil {
		return err
	}

	all := stats.MergeContributors(plugin, website)
	contributorsGauge.Set(float64(len(all)))
	commitsGauge.Set(float64(summary.Commits))
	refreshTotal.WithLabelValues("ok").Inc()
	app.logger.Info("refreshed", "contributors", len(all), "commits", summary.Commits, "repositories", summary.Repositories)
	return nil
}
