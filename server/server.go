// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the marketplace API over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nitchau/handyman-sub001/assistant"
	"github.com/nitchau/handyman-sub001/geocode"
	"github.com/nitchau/handyman-sub001/metrics"
	"github.com/nitchau/handyman-sub001/quote"
	"github.com/nitchau/handyman-sub001/spatial"
	"github.com/nitchau/handyman-sub001/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReverseGeocoder turns raw lat/lng strings into an address.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, latRaw, lngRaw string) (*geocode.Address, error)
}

// LocationWriter persists coordinates.
type LocationWriter interface {
	UpdateUserLocation(ctx context.Context, userID string, p spatial.Point) error
	UpdateContractorLocation(ctx context.Context, contractorID string, p spatial.Point, radiusMiles *float64) error
}

// Assistant answers chat and bill of materials requests.
type Assistant interface {
	Chat(ctx context.Context, messages []assistant.Message) (*assistant.Reply, error)
	BillOfMaterials(ctx context.Context, req assistant.BOMRequest) (*assistant.BillOfMaterials, error)
}

// Deps are the collaborators of the server. Logger and Metrics may be nil.
type Deps struct {
	Geocoder    ReverseGeocoder
	Locations   LocationWriter
	Quotes      quote.Repository
	Profiles    store.ProfileRepository
	Designs     store.DesignRepository
	Contractors store.ContractorRepository
	Assistant   Assistant
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

type Server struct {
	geocoder    ReverseGeocoder
	locations   LocationWriter
	quotes      quote.Repository
	profiles    store.ProfileRepository
	designs     store.DesignRepository
	contractors store.ContractorRepository
	assistant   Assistant
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		geocoder:    deps.Geocoder,
		locations:   deps.Locations,
		quotes:      deps.Quotes,
		profiles:    deps.Profiles,
		designs:     deps.Designs,
		contractors: deps.Contractors,
		assistant:   deps.Assistant,
		logger:      logger,
		metrics:     deps.Metrics,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.healthz)

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.GET("/geocode", s.reverseGeocode)
	api.PUT("/users/:id/location", s.updateUserLocation)
	api.PUT("/contractors/:id/location", s.updateContractorLocation)
	api.GET("/contractors/nearby", s.nearbyContractors)
	api.POST("/contractors/:id/quotes", s.createQuote)
	api.GET("/contractors/:id/quotes", s.listQuotes)
	api.GET("/profiles/:id", s.getProfile)
	api.GET("/designs/featured", s.featuredDesigns)
	api.POST("/chat", s.chat)
	api.POST("/bom", s.billOfMaterials)

	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.logger.Info("shutting down")

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs every request through zap and records it in metrics.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := ctx.Writer.Status()
		elapsed := time.Since(start)

		s.metrics.ObserveHTTP(ctx.Request.Method, route, status, elapsed)

		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			s.logger.Warn("request", fields...)
		default:
			s.logger.Debug("request", fields...)
		}
	}
}
