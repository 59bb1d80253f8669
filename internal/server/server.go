// Package server exposes the aggregation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devicerevive/secondlife/internal/aigen"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/pipeline"
	"github.com/devicerevive/secondlife/internal/schema"
)

// valuationTimeout bounds the standalone valuation endpoint, which runs at
// most two model calls.
const valuationTimeout = 60 * time.Second

// Config wires a Server.
type Config struct {
	Runner          *pipeline.Runner
	Generator       *aigen.Generator
	LLM             *llm.Client
	PipelineTimeout time.Duration
	Logger          *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	runner          *pipeline.Runner
	gen             *aigen.Generator
	llm             *llm.Client
	pipelineTimeout time.Duration
	logger          *slog.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.PipelineTimeout == 0 {
		cfg.PipelineTimeout = 120 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		runner:          cfg.Runner,
		gen:             cfg.Generator,
		llm:             cfg.LLM,
		pipelineTimeout: cfg.PipelineTimeout,
		logger:          logger,
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/scrape", s.scrape)
		v1.POST("/eco-valuation", s.ecoValuation)
	}

	return router
}

// requestLogger logs one line per request with method, path, status, and
// latency.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"groq_configured": s.llm.Configured(),
		"timestamp":       time.Now().UnixMilli(),
	})
}

// deviceFromScrape converts the wire request into the pipeline's device
// context, applying the defaults the frontend omits.
func deviceFromScrape(req schema.ScrapeRequest) device.Context {
	mode := device.Mode(req.Mode)
	if mode == "" {
		mode = device.ModeStandard
	}
	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = "Smartphone"
	}
	return device.Context{
		Name:       req.DeviceName,
		Conditions: req.Conditions,
		Mode:       mode,
		DeviceType: deviceType,
		RAMGB:      req.RAMGB,
		StorageGB:  req.StorageGB,
		Notes:      req.ConditionNotes,
	}
}

func (s *Server) scrape(c *gin.Context) {
	var req schema.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !s.llm.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "GROQ_API_KEY not configured. Cannot scrape."})
		return
	}

	dev := deviceFromScrape(req)
	s.logger.Info("scrape request",
		"device", dev.Name, "conditions", dev.Conditions, "mode", dev.Mode)

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.pipelineTimeout)
	defer cancel()

	resp := s.runner.Run(ctx, dev)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Error("scrape timed out", "timeout", s.pipelineTimeout)
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"detail": fmt.Sprintf("Scraping timed out after %d seconds.", int(s.pipelineTimeout.Seconds())),
		})
		return
	}

	s.logger.Info("scrape complete", "recommendations", len(resp.Recommendations))
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ecoValuation(c *gin.Context) {
	var req schema.ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !s.llm.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "GROQ_API_KEY not configured."})
		return
	}

	s.logger.Info("eco valuation request",
		"device", req.DeviceName, "conditions", req.Conditions, "images", len(req.Images))

	ctx, cancel := context.WithTimeout(c.Request.Context(), valuationTimeout)
	defer cancel()

	dev := device.Context{
		Name:       req.DeviceName,
		Conditions: req.Conditions,
		DeviceType: req.DeviceType,
		RAMGB:      req.RAMGB,
		StorageGB:  req.StorageGB,
	}
	if dev.DeviceType == "" {
		dev.DeviceType = "Smartphone"
	}

	notes := req.AdditionalNotes
	if report := s.gen.AnalyzeImages(ctx, req.Images, req.DeviceName); report != nil {
		if notes != "" {
			notes += " "
		}
		notes += report.Notes()
	}

	result := s.gen.Valuation(ctx, dev, notes)
	if result == nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "Eco valuation timed out."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "AI valuation returned no result."})
		return
	}

	c.JSON(http.StatusOK, result)
}
