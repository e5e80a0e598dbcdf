package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/rowad-platform/merit-api/api/swagger"
	"github.com/rowad-platform/merit-api/internal/handler"
	"github.com/rowad-platform/merit-api/internal/middleware"
	"github.com/rowad-platform/merit-api/internal/models"
	"github.com/rowad-platform/merit-api/internal/service"
	"github.com/rowad-platform/merit-api/pkg/config"
	"github.com/rowad-platform/merit-api/pkg/logger"
	"github.com/rowad-platform/merit-api/pkg/middleware/cors"
	"github.com/rowad-platform/merit-api/pkg/middleware/requestid"
)

// Dependencies groups everything the router needs to wire the HTTP surface.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Auth    *service.AuthService
	Metrics *service.MetricsService

	AuthHandler     *handler.AuthHandler
	StudentHandler  *handler.StudentHandler
	BehaviorHandler *handler.BehaviorHandler
	ReportHandler   *handler.ReportHandler
	ImportHandler   *handler.ImportHandler
}

// New assembles the gin engine with all routes and middleware.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestid.Middleware())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(cors.New(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ready", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(deps.Auth))
	{
		protected.GET("/auth/me", deps.AuthHandler.Me)

		staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

		students := protected.Group("/students")
		{
			students.GET("", deps.StudentHandler.List)
			students.GET("/user/:user_id", deps.StudentHandler.ByUser)
			students.GET("/top/by-class", deps.ReportHandler.TopByClass)
			students.GET("/:id", deps.StudentHandler.Get)
			students.POST("", staff, deps.StudentHandler.Create)
			students.POST("/import", staff, deps.ImportHandler.Import)
			students.DELETE("/:id", staff, deps.StudentHandler.Delete)
		}

		behavior := protected.Group("/behavior")
		{
			behavior.POST("", staff, deps.BehaviorHandler.Create)
			behavior.GET("/student/:id", deps.BehaviorHandler.ListByStudent)
			behavior.DELETE("/:id", staff, deps.BehaviorHandler.Delete)
		}

		protected.GET("/statistics", middleware.RequireRoles(models.RoleAdmin), deps.ReportHandler.Statistics)

		reports := protected.Group("/reports", staff)
		{
			reports.GET("/:kind", deps.ReportHandler.Report)
			reports.GET("/:kind/export", deps.ReportHandler.Export)
		}
	}

	return engine
}
