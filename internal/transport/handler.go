package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/erosion-inspector-go/internal/analyzer"
	"github.com/anime-shed/erosion-inspector-go/internal/auth"
	"github.com/anime-shed/erosion-inspector-go/internal/config"
	apperrors "github.com/anime-shed/erosion-inspector-go/internal/errors"
	"github.com/anime-shed/erosion-inspector-go/internal/logger"
	"github.com/anime-shed/erosion-inspector-go/internal/observer"
	"github.com/anime-shed/erosion-inspector-go/internal/service"
	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

const requestIDHeader = "X-Request-ID"

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Classification service.ClassificationService
	Reports        service.ReportService
	Metrics        *observer.MetricsObserver
	Pool           *analyzer.WorkerPool
	Config         *config.Config
}

type handler struct {
	classification service.ClassificationService
	reports        service.ReportService
	metrics        *observer.MetricsObserver
	pool           *analyzer.WorkerPool
	cfg            *config.Config
}

func NewHandler(deps Dependencies) http.Handler {
	h := &handler{
		classification: deps.Classification,
		reports:        deps.Reports,
		metrics:        deps.Metrics,
		pool:           deps.Pool,
		cfg:            deps.Config,
	}

	r := gin.New()
	r.MaxMultipartMemory = deps.Config.MaxRequestBodySize

	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestSizeLimiter(deps.Config.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	api := r.Group("/api")
	api.GET("/metrics", h.getMetrics)

	erosion := api.Group("/analyze-erosion")
	erosion.POST("", h.analyzeUpload)
	erosion.POST("/url", h.analyzeURL)
	erosion.POST("/batch", h.analyzeBatch)

	reports := api.Group("/reports", auth.JWTMiddleware(deps.Config.JWTSecret, deps.Config.JWTAudience))
	reports.POST("", auth.RequireRole(models.RoleReporter), h.submitReport)

	review := reports.Group("", auth.RequireRole(models.RoleSupervisor))
	review.GET("", h.listReports)
	review.GET("/summary", h.reportSummary)
	review.GET("/:id", h.getReport)
	review.GET("/:id/image", h.getReportImage)
	review.PATCH("/:id/status", h.updateReportStatus)

	return r
}

// requestContext bounds a handler by the configured request timeout.
func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) getMetrics(c *gin.Context) {
	body := gin.H{}
	if h.metrics != nil {
		body["analysis"] = h.metrics.Snapshot()
	}
	if h.pool != nil {
		body["worker_pool"] = h.pool.GetStats()
	}
	c.JSON(http.StatusOK, body)
}

// Middleware and helper functions

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id":  c.GetString("request_id"),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status carried by err.
func fail(c *gin.Context, message string, err error) {
	respondError(c, determineStatusCode(err), message, err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  c.GetString("request_id"),
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	detail := message
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail = fmt.Sprintf("%s: %s", message, appErr.Message)
	} else if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: detail,
	})
}
