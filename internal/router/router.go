// Package router wires middleware and handlers onto a gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/library-api/internal/config"
	"github.com/snnyvrz/library-api/internal/docs"
	"github.com/snnyvrz/library-api/internal/handler"
	"github.com/snnyvrz/library-api/internal/middleware"
	"github.com/snnyvrz/library-api/internal/validation"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Books     handler.BookService
	StartTime time.Time
	Version   string
}

func New(d Deps) *gin.Engine {
	validation.UseJSONFieldNames()

	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := gin.New()

	e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	})

	e.Use(
		middleware.RequestID(),
		middleware.Logging(logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("panic recovered",
				zap.Any("error", recovered),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", middleware.RequestIDFrom(c)),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, validation.ErrorResponse{
				Code:    "INTERNAL_ERROR",
				Message: "internal server error",
			})
		}),
	)

	// Metrics sits ahead of CORS so preflights and rejected origins are counted.
	if d.Config.MetricsEnabled {
		e.Use(middleware.Metrics())
		e.GET("/metrics", middleware.MetricsHandler())
	}

	e.Use(middleware.CORS(d.Config.CORSAllowedOrigins))

	handler.NewHealthHandler(d.DB, d.StartTime, d.Version).RegisterRoutes(e)
	handler.NewBookHandler(d.Books, logger).RegisterRoutes(&e.RouterGroup)

	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Version = d.Version
	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return e
}
