package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baxromumarov/gig-crawler/internal/browser"
	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/core"
	"github.com/baxromumarov/gig-crawler/internal/httpx"
	"github.com/baxromumarov/gig-crawler/internal/project"
	"github.com/baxromumarov/gig-crawler/internal/scraper"
	"github.com/baxromumarov/gig-crawler/internal/sink"
	"github.com/baxromumarov/gig-crawler/internal/store"
	"github.com/baxromumarov/gig-crawler/internal/urlutil"
)

// deps holds the process-wide collaborators shared by every crawl.
type deps struct {
	cfg     *config.Config
	logger  *slog.Logger
	browser *browser.Colly
	sink    sink.Multi
	store   *store.Store
	redis   *redis.Client
}

func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deps, error) {
	fetcher := httpx.NewCollyFetcher(cfg.UserAgent,
		httpx.WithTimeout(cfg.NavigationTimeout),
		httpx.WithDefaultRate(cfg.HostRate, cfg.HostBurst),
	)
	applyHostLimits(fetcher, cfg, logger)
	d := &deps{
		cfg:     cfg,
		logger:  logger,
		browser: browser.NewColly(fetcher, cfg.NavigationTimeout),
	}

	for _, name := range sinkOrder(cfg.Sinks) {
		switch name {
		case config.SinkFile:
			d.sink = append(d.sink, sink.NewJSONFile(cfg.OutputDir, logger))
		case config.SinkPostgres:
			st, err := store.NewStore(cfg.DatabaseURL)
			if err != nil {
				d.Close()
				return nil, err
			}
			d.store = st
			if err := st.RunMigrations(ctx); err != nil {
				d.Close()
				return nil, err
			}
			d.sink = append(d.sink, st)
		case config.SinkRedis:
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				d.Close()
				return nil, &config.ConfigurationError{Input: cfg.RedisURL, Reason: "invalid redis_url", Err: err}
			}
			d.redis = redis.NewClient(opts)
			if err := d.redis.Ping(ctx).Err(); err != nil {
				d.Close()
				return nil, fmt.Errorf("failed to ping redis: %w", err)
			}
			d.sink = append(d.sink, sink.NewRedis(d.redis, cfg.RedisPrefix))
		}
	}

	logger.Debug("dependencies wired", "sinks", cfg.Sinks)
	return d, nil
}

// sinkOrder moves the file sink to the end so a batch rejected by a store
// never leaves an output file behind.
func sinkOrder(names []string) []string {
	out := make([]string, 0, len(names))
	file := false
	for _, n := range names {
		if n == config.SinkFile {
			file = true
			continue
		}
		out = append(out, n)
	}
	if file {
		out = append(out, config.SinkFile)
	}
	return out
}

type hostLimiter interface {
	SetHostLimit(host string, per time.Duration, burst int)
}

// applyHostLimits gives each platform with a host_limits entry its own
// request interval on the host its pages are served from.
func applyHostLimits(l hostLimiter, cfg *config.Config, logger *slog.Logger) {
	for p, per := range cfg.HostLimits {
		u, err := url.Parse(urlutil.BaseURL(p))
		if err != nil || u.Hostname() == "" {
			logger.Warn("no host for platform, host limit ignored", "platform", string(p))
			continue
		}
		l.SetHostLimit(u.Hostname(), per, cfg.HostBurst)
		logger.Debug("host limit set", "host", u.Hostname(), "every", per.String(), "burst", cfg.HostBurst)
	}
}

func (d *deps) service(p project.Platform) (*core.CrawlingService, error) {
	c, err := scraper.New(p, d.browser, scraper.WithLogger(d.logger))
	if err != nil {
		return nil, err
	}
	return core.NewCrawlingService(c, d.sink,
		core.WithConcurrency(d.cfg.Concurrency),
		core.WithPacing(d.cfg.Pacing),
		core.WithLogger(d.logger),
	), nil
}

func (d *deps) Close() error {
	if open := d.browser.OpenPages(); open != 0 {
		d.logger.Warn("pages left open at shutdown", "open", open)
	}
	errs := []error{d.browser.Close()}
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	return errors.Join(errs...)
}
