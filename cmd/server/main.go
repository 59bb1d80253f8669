package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devicerevive/secondlife/internal/aigen"
	"github.com/devicerevive/secondlife/internal/config"
	"github.com/devicerevive/secondlife/internal/fingerprint"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/pipeline"
	"github.com/devicerevive/secondlife/internal/search"
	"github.com/devicerevive/secondlife/internal/server"
	"github.com/devicerevive/secondlife/internal/sources"
	"github.com/devicerevive/secondlife/pkg/proxy"
	"github.com/devicerevive/secondlife/pkg/ratelimit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	if cfg.GroqAPIKey == "" {
		logger.Warn("GROQ_API_KEY is not set, scrape requests will be rejected")
	} else {
		logger.Info("GROQ_API_KEY is configured, scraper ready")
	}

	var proxyPool *proxy.Pool
	if cfg.ProxyFile != "" {
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.LoadFile(cfg.ProxyFile); err != nil {
			logger.Error("failed to load proxy file", "file", cfg.ProxyFile, "error", err)
			os.Exit(1)
		}
		logger.Info("proxy pool loaded", "file", cfg.ProxyFile)
	}

	var limiter *ratelimit.Limiter
	if cfg.SearchRPS > 0 {
		limiter = ratelimit.NewLimiter(cfg.SearchRPS, cfg.SearchJitter)
		defer limiter.Stop()
	}

	fetcher, err := search.NewFetcher(search.FetchConfig{
		Timeout:     30 * time.Second,
		ProxyPool:   proxyPool,
		Fingerprint: fingerprint.Profile(cfg.FingerprintProfile),
		Limiter:     limiter,
	})
	if err != nil {
		logger.Error("failed to create SERP fetcher", "error", err)
		os.Exit(1)
	}

	searchClient := search.NewClient(search.ClientConfig{
		Fetcher:     fetcher,
		Concurrency: cfg.SearchConcurrency,
		MaxResults:  cfg.SearchMaxResults,
		Logger:      logger,
	})

	llmClient, err := llm.NewClient(llm.Config{APIKey: cfg.GroqAPIKey})
	if err != nil {
		logger.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}

	generator := aigen.New(aigen.Config{
		Client:      llmClient,
		Model:       cfg.GroqModel,
		VisionModel: cfg.GroqVisionModel,
		Logger:      logger,
	})

	runner := pipeline.New(pipeline.Config{
		Scrapers: []sources.Scraper{
			&sources.YouTube{Client: searchClient},
			&sources.Reddit{Client: searchClient},
			&sources.GitHub{Client: searchClient},
			&sources.Maker{Client: searchClient},
			&sources.Web{Client: searchClient},
			&sources.Creative{Client: searchClient},
		},
		Generator:     generator,
		Search:        searchClient,
		SourceTimeout: cfg.SourceTimeout,
		Logger:        logger,
	})

	srv := server.New(server.Config{
		Runner:          runner,
		Generator:       generator,
		LLM:             llmClient,
		PipelineTimeout: cfg.PipelineTimeout,
		Logger:          logger,
	})

	httpSrv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     srv.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited gracefully")
}
