// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes a psgc.Index over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psgcapi/psgc/psgc"
	"golang.org/x/time/rate"
)

// TotalCountHeader carries the number of results before limit/offset slicing.
const TotalCountHeader = "X-Total-Count"

// Options tunes the middleware stack.
type Options struct {
	AllowedOrigins []string // CORS origins, "*" allows any; empty disables CORS
	RateLimit      float64  // requests per second across all clients, 0 disables
	RateBurst      int
}

// Server answers API requests from an immutable index.
type Server struct {
	index  *psgc.Index
	engine *gin.Engine
}

// UnitResponse is the JSON shape of a unit. ParentCode is null for regions.
type UnitResponse struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Level      psgc.Level `json:"level"`
	ParentCode *string    `json:"parent_code"`
	FullPath   string     `json:"full_path"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Units  int    `json:"units"`
}

// NewServer builds the router serving index.
func NewServer(index *psgc.Index, options Options) *Server {
	s := &Server{index: index}

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(RequestID())

	if options.RateLimit > 0 {
		r.Use(RateLimit(rate.NewLimiter(rate.Limit(options.RateLimit), options.RateBurst)))
	}

	if len(options.AllowedOrigins) > 0 {
		r.Use(CORS(options.AllowedOrigins))
	}

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	for _, level := range psgc.Levels {
		api.GET("/"+level.Plural(), s.listUnits(level))

		if level != psgc.Region {
			api.GET("/"+level.Plural()+"/:parent", s.listUnits(level))
		}
	}

	api.GET("/search", s.search)
	api.GET("/search/:level", s.search)
	api.GET("/units/:code", s.getUnit)
	api.GET("/path/:code", s.getPath)

	s.engine = r

	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully, waiting
// at most grace for in-flight requests.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, HealthResponse{Status: "ok", Units: s.index.Len()})
}

func (s *Server) listUnits(level psgc.Level) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		parent := ctx.Param("parent")
		if parent == "" {
			parent = ctx.Query("parent")
		}

		units, err := s.index.ListByLevel(level, parent)
		if err != nil {
			s.fail(ctx, err)

			return
		}

		s.respondUnits(ctx, units)
	}
}

func (s *Server) search(ctx *gin.Context) {
	levelParam := ctx.Param("level")
	if levelParam == "" {
		levelParam = ctx.Query("level")
	}

	level, err := psgc.ParseLevel(levelParam)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	units, err := s.index.Search(ctx.Query("q"), level)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	s.respondUnits(ctx, units)
}

func (s *Server) getUnit(ctx *gin.Context) {
	unit, err := s.index.Get(ctx.Param("code"))
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, s.toResponse(unit))
}

func (s *Server) getPath(ctx *gin.Context) {
	path, err := s.index.GetPath(ctx.Param("code"))
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, s.toResponses(path))
}

// respondUnits applies the limit/offset window and writes the units.
func (s *Server) respondUnits(ctx *gin.Context, units []psgc.GeoUnit) {
	offset, err := nonNegativeQuery(ctx, "offset", 0)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	limit, err := nonNegativeQuery(ctx, "limit", len(units))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	ctx.Header(TotalCountHeader, strconv.Itoa(len(units)))

	start := min(offset, len(units))
	end := start + min(limit, len(units)-start)

	ctx.JSON(http.StatusOK, s.toResponses(units[start:end]))
}

func nonNegativeQuery(ctx *gin.Context, name string, def int) (int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s parameter %q", name, raw)
	}

	return n, nil
}

func (s *Server) fail(ctx *gin.Context, err error) {
	switch {
	case psgc.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, psgc.ErrInvalidLevel):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Request %s failed: %v", ctx.Request.URL.Path, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) toResponse(u psgc.GeoUnit) UnitResponse {
	resp := UnitResponse{
		Code:  u.Code,
		Name:  u.Name,
		Level: u.Level,
	}

	if u.ParentCode != "" {
		parent := u.ParentCode
		resp.ParentCode = &parent
	}

	// every unit handed out by the index has a resolvable path
	resp.FullPath, _ = s.index.FullPath(u.Code)

	return resp
}

func (s *Server) toResponses(units []psgc.GeoUnit) []UnitResponse {
	ret := make([]UnitResponse, len(units))
	for i, u := range units {
		ret[i] = s.toResponse(u)
	}

	return ret
}
