package api

import (
	"github.com/gin-gonic/gin"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/api/handler"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/api/middleware"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/config"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/logger"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	taskService *service.TaskService,
	reconcileService *service.ReconcileService,
	publisherService *service.PublisherService,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	taskHandler := handler.NewTaskHandler(taskService, reconcileService)
	recordHandler := handler.NewRecordHandler(taskService, publisherService)
	publisherHandler := handler.NewPublisherHandler(publisherService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Publisher update endpoints consumed by the existing review UI,
	// kept at their original root paths
	r.PUT("/data-in-process/:id/publisher", recordHandler.UpdateInProcessPublisher)
	r.PUT("/data-final/:id/publisher", recordHandler.UpdateFinalPublisher)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Upload tasks
		v1.POST("/tasks", taskHandler.CreateTask)
		v1.GET("/tasks", taskHandler.ListTasks)
		v1.GET("/tasks/:id", taskHandler.GetTask)
		v1.DELETE("/tasks/:id", taskHandler.DeleteTask)
		v1.PUT("/tasks/:id/assign", taskHandler.AssignTask)
		v1.POST("/tasks/:id/reconcile", taskHandler.Reconcile)
		v1.GET("/tasks/:id/rows", taskHandler.ListRows)

		// Row review
		v1.POST("/data-in-process/:id/finalize", recordHandler.FinalizeRow)
		v1.DELETE("/data-in-process/:id", recordHandler.DiscardRow)

		// Finals
		v1.GET("/data-final", recordHandler.ListFinal)

		// Publisher directory
		v1.POST("/publishers", publisherHandler.Register)
		v1.GET("/publishers", publisherHandler.List)
	}

	return r
}
