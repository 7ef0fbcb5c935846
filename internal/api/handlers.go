package api

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
	"github.com/dalfonso89/currency-converter/internal/format"
	"github.com/dalfonso89/currency-converter/internal/history"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/middleware"
	"github.com/dalfonso89/currency-converter/internal/models"
	"github.com/dalfonso89/currency-converter/internal/ratelimit"
	"github.com/dalfonso89/currency-converter/internal/service"
)

const version = "1.0.0"

// HealthChecker is implemented by rate sources that can report reachability
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HandlerConfig wires the handlers to their dependencies
type HandlerConfig struct {
	Logger      *logger.Logger
	Converter   *service.Converter
	History     *history.Store
	Health      HealthChecker
	RateLimiter *ratelimit.Limiter
}

// Handlers contains all HTTP handlers
type Handlers struct {
	logger      *logger.Logger
	converter   *service.Converter
	history     *history.Store
	health      HealthChecker
	rateLimiter *ratelimit.Limiter
	startTime   time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(handlerConfig HandlerConfig) *Handlers {
	return &Handlers{
		logger:      handlerConfig.Logger,
		converter:   handlerConfig.Converter,
		history:     handlerConfig.History,
		health:      handlerConfig.Health,
		rateLimiter: handlerConfig.RateLimiter,
		startTime:   time.Now(),
	}
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	if handlers.rateLimiter != nil {
		router.Use(handlers.rateLimiter.GinMiddleware())
	}

	router.SetHTMLTemplate(template.Must(template.New("pages").Funcs(templateFuncs).Parse(pageTemplates)))

	// Minimal form
	router.GET("/", handlers.Index)
	router.POST("/convert", handlers.SubmitForm)

	router.GET("/health", handlers.HealthCheck)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/currencies", handlers.GetCurrencies)
		apiV1.POST("/convert", handlers.Convert)
		apiV1.GET("/history", handlers.GetHistory)
	}

	return router
}

// HealthCheck handles health check requests
func (handlers *Handlers) HealthCheck(context *gin.Context) {
	healthStatus := "healthy"
	if handlers.health != nil {
		if err := handlers.health.HealthCheck(context.Request.Context()); err != nil {
			healthStatus = "unhealthy"
			handlers.logger.Warnf("Rate source health check failed: %v", err)
		}
	}

	context.JSON(http.StatusOK, models.HealthCheck{
		Status:    healthStatus,
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(handlers.startTime).String(),
	})
}

// GetCurrencies returns the currency catalog
func (handlers *Handlers) GetCurrencies(context *gin.Context) {
	catalog, err := handlers.converter.Catalog(context.Request.Context())
	if err != nil {
		handlers.writeError(context, err)
		return
	}

	context.JSON(http.StatusOK, models.CurrenciesResponse{
		Currencies: catalog,
		Count:      len(catalog),
	})
}

// Convert handles JSON conversion requests
func (handlers *Handlers) Convert(context *gin.Context) {
	var request models.ConvertRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := service.CheckAmount(*request.Amount); err != nil {
		handlers.writeError(context, err)
		return
	}

	targets := make([]string, 0, len(request.Targets))
	for _, target := range request.Targets {
		targets = append(targets, service.ParseCodes(target)...)
	}

	result, err := handlers.converter.Convert(context.Request.Context(),
		service.NormalizeCode(request.Base), targets, *request.Amount)
	if err != nil {
		handlers.writeError(context, err)
		return
	}

	context.JSON(http.StatusOK, result)
}

// GetHistory returns stored conversions, most recent first
func (handlers *Handlers) GetHistory(context *gin.Context) {
	conversions := handlers.history.Recent()
	context.JSON(http.StatusOK, models.HistoryResponse{
		Conversions: conversions,
		Count:       len(conversions),
	})
}

// writeError maps typed errors to HTTP status codes
func (handlers *Handlers) writeError(context *gin.Context, err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInvalidAmount, apperrors.ErrorTypeInvalidCurrencyCode:
		handlers.writeErrorResponse(context, http.StatusBadRequest, apperrors.TypeOf(err).String(), err.Error())
	case apperrors.ErrorTypeSourceUnavailable, apperrors.ErrorTypeRateUnavailable:
		handlers.writeErrorResponse(context, http.StatusBadGateway, apperrors.TypeOf(err).String(), err.Error())
	default:
		handlers.writeErrorResponse(context, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(context *gin.Context, statusCode int, errorMessage, errorDetails string) {
	context.JSON(statusCode, models.ErrorResponse{
		Error:   errorMessage,
		Message: errorDetails,
		Code:    statusCode,
	})
}

var templateFuncs = template.FuncMap{
	"money":      format.Money,
	"rate":       format.Rate,
	"conversion": format.Conversion,
	"entry": func(record models.ConversionRecord) string {
		return format.HistoryEntry(record, "→")
	},
}
