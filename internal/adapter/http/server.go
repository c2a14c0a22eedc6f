package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/explain"
	"github.com/couchcryptid/crop-loss-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RequestIDHeader carries the caller's request ID. One is generated when absent.
const RequestIDHeader = "X-Request-ID"

// Assessor is the estimation and explanation entry point the API serves.
type Assessor interface {
	Analyze(ctx context.Context, req domain.EstimateRequest) (domain.CropLossEstimate, error)
	Explain(req domain.ExplainRequest) (explain.Result, error)
	Assess(ctx context.Context, req domain.EstimateRequest) (pipeline.Assessment, error)
}

// Server exposes the crop-loss API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api/v1 routes and /healthz,
// /readyz, and /metrics.
func NewServer(addr string, assessor Assessor, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	// Process-wide gin setting: JSON bodies with unknown keys are rejected.
	binding.EnableDecoderDisallowUnknownFields = true
	router := gin.New()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // satellite tier makes two upstream calls
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		logger:   logger,
	}

	router.Use(gin.Recovery(), requestID(), s.accessLog())

	router.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	router.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(ready)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/explain", s.handleExplain)
	api.POST("/assess", s.handleAssess)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// analyzeRequest uses pointers so that an omitted coordinate is rejected
// instead of read as zero.
type analyzeRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	CropType  string   `json:"crop_type" binding:"required"`
	FieldArea *float64 `json:"field_area" binding:"required"`
}

func (r analyzeRequest) toDomain() domain.EstimateRequest {
	return domain.EstimateRequest{
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		CropType:  r.CropType,
		FieldArea: *r.FieldArea,
	}
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	est, err := s.assessor.Analyze(c.Request.Context(), body.toDomain())
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "estimate": est})
}

func (s *Server) handleExplain(c *gin.Context) {
	var body domain.ExplainRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	result, err := s.assessor.Explain(body)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prediction": result})
}

func (s *Server) handleAssess(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	out, err := s.assessor.Assess(c.Request.Context(), body.toDomain())
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "estimate": out.Estimate, "prediction": out.Prediction})
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": err.Error()})
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// requestID propagates X-Request-ID into the request context so audit events
// carry the caller's ID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(domain.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/healthz" {
			return
		}
		id, _ := domain.RequestIDFromContext(c.Request.Context())
		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", id,
		)
	}
}
