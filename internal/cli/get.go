// Copyright 2026 The fetchq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogama/fetchq"
	"github.com/gogama/fetchq/cache"
	"github.com/gogama/fetchq/request"
	"github.com/gogama/fetchq/retry"
	"github.com/gogama/fetchq/transport"
)

type getOptions struct {
	configPath string
	output     string
	headers    []string
	noCache    bool
	workers    int
	retries    int
	timeout    time.Duration
	redisAddr  string
}

func newGetCmd() *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get [flags] URL [URL...]",
		Short: "Fetch one or more URLs through the dispatch engine",
		Long: `Get submits each URL to the engine's worker pool and prints the
delivered bodies to stdout in completion order. Responses are cached
and revalidated with conditional requests on repeat fetches when a
Redis cache is configured.

Example:
  fetchq get https://example.com/
  fetchq get -H "Accept: application/json" -o out.json https://api.example.com/v1/items`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the body to a file instead of stdout (single URL only)")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, `extra request header, "Name: value"`)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "dispatcher pool size (0 means the default)")
	cmd.Flags().IntVar(&opts.retries, "retries", -1, "retry ceiling per request (-1 means the config or default)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "initial per-attempt timeout (0 means the config or default)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the response cache (host:port)")

	return cmd
}

func runGet(cmd *cobra.Command, args []string, opts *getOptions) error {
	if opts.output != "" && len(args) > 1 {
		return fmt.Errorf("--output requires exactly one URL, got %d", len(args))
	}

	logger := loggerFromContext(cmd.Context())

	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	// Flags override the config file.
	if opts.retries >= 0 {
		cfg.Retry.MaxRetries = opts.retries
		if cfg.Retry.Multiplier == 0 {
			cfg.Retry.Multiplier = retry.DefaultMultiplier
		}
	}
	if opts.timeout > 0 {
		cfg.Retry.Timeout = duration(opts.timeout)
	}
	if opts.redisAddr != "" {
		cfg.Redis.Addr = opts.redisAddr
	}

	header, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	c, cleanup, err := buildCache(cmd, cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures int

	engine := &fetchq.Engine{
		Cache:   c,
		Workers: firstPositive(opts.workers, cfg.Workers),
		Logger:  logger,
		Stack:   &transport.HTTPStack{UserAgent: cfg.UserAgent},
		Delivery: &fetchq.CallbackDelivery{
			OnResponse: func(r *request.Request, resp *request.NetworkResponse) {
				if err := writeBody(opts.output, resp.Data); err != nil {
					logger.Error("write failed", "url", r.URL, "error", err)
					mu.Lock()
					failures++
					mu.Unlock()
					return
				}
				logger.Info("delivered", "url", r.URL, "status", resp.StatusCode,
					"bytes", len(resp.Data), "time", resp.NetworkTime,
					"notModified", resp.NotModified)
			},
			OnError: func(r *request.Request, err error) {
				logger.Error("request failed", "url", r.URL, "error", err)
				mu.Lock()
				failures++
				mu.Unlock()
			},
			OnRetry: func(r *request.Request, prev, next time.Duration) {
				logger.Warn("retrying", "url", r.URL, "timeout", next)
			},
			OnFinish: func(_ *request.Request) {
				wg.Done()
			},
		},
	}
	engine.Start()
	defer engine.Stop()

	for _, target := range args {
		r := request.New("GET", target)
		r.Header = header.Clone()
		r.ShouldCache = !opts.noCache
		r.Policy = cfg.policy()
		wg.Add(1)
		if !engine.Add(r) {
			wg.Done()
			return fmt.Errorf("engine rejected %s", target)
		}
	}
	wg.Wait()

	if failures > 0 {
		return fmt.Errorf("%d of %d requests failed", failures, len(args))
	}
	return nil
}

func buildCache(cmd *cobra.Command, cfg Config) (cache.Cache, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, nil, nil // engine default
	}
	r, err := cache.NewRedis(cmd.Context(), cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
		TTL:      time.Duration(cfg.Redis.TTL),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return r, func() { _ = r.Close() }, nil
}

func parseHeaders(raw []string) (http.Header, error) {
	header := make(http.Header)
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf(`malformed header %q, want "Name: value"`, entry)
		}
		header.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return header, nil
}

func writeBody(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
