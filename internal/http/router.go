package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/neo4j-contrib/dx-feedback-form/internal/http/handlers"
	"github.com/neo4j-contrib/dx-feedback-form/internal/http/middleware"
	"github.com/neo4j-contrib/dx-feedback-form/internal/platform/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	ServiceName     string
	FeedbackHandler *handlers.FeedbackHandler
	ReportHandler   *handlers.ReportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))

	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/feedback", cfg.FeedbackHandler.Submit)

	api := router.Group("/api")
	{
		api.GET("/feedback/:project", cfg.ReportHandler.ProjectFeedback)
		api.GET("/page/:id", cfg.ReportHandler.PageFeedback)
		api.GET("/fire/:project", cfg.ReportHandler.FireReport)
	}

	return router
}
