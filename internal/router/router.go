package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lracdim/trazer-backend/internal/handlers"
	"github.com/lracdim/trazer-backend/internal/middleware"
	"github.com/lracdim/trazer-backend/internal/models"
)

func NewRouter(h *handlers.Handlers) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), h.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		sites := api.Group("/sites", middleware.AuthMiddleware())
		{
			sites.GET("", handlers.ListSites)
			sites.POST("", middleware.RequireMinRole(models.RoleSupervisor), handlers.CreateSite)
			sites.DELETE("/:site_id", middleware.RequireMinRole(models.RoleSupervisor), handlers.DeleteSite)
		}

		shifts := api.Group("/shifts", middleware.AuthMiddleware())
		{
			shifts.POST("/start", middleware.RequireRole(models.RoleGuard), h.StartShift)
			shifts.POST("/end", middleware.RequireRole(models.RoleGuard), h.EndShift)
			shifts.GET("/active", middleware.RequireRole(models.RoleGuard), h.ActiveShift)
			shifts.GET("/:shift_id", middleware.RequireMinRole(models.RoleSupervisor), h.ShiftDetail)
		}

		locations := api.Group("/locations", middleware.AuthMiddleware())
		{
			locations.POST("", middleware.RequireRole(models.RoleGuard), h.IngestLocations)
			locations.GET("/active", middleware.RequireMinRole(models.RoleSupervisor), h.ActiveGuardStatuses)
			locations.GET("/route/:shift_id", middleware.RequireMinRole(models.RoleSupervisor), h.ShiftRoute)
		}

		alerts := api.Group("/alerts", middleware.AuthMiddleware())
		{
			alerts.POST("/sos", middleware.RequireRole(models.RoleGuard), h.TriggerSOS)
			alerts.GET("", middleware.RequireMinRole(models.RoleSupervisor), h.ListAlerts)
			alerts.GET("/count", middleware.RequireMinRole(models.RoleSupervisor), h.CountUnresolvedAlerts)
			alerts.PATCH("/:alert_id/resolve", middleware.RequireMinRole(models.RoleSupervisor), h.ResolveAlert)
		}

		incidents := api.Group("/incidents", middleware.AuthMiddleware())
		{
			incidents.POST("", middleware.RequireRole(models.RoleGuard), h.CreateIncident)
			incidents.GET("", middleware.RequireMinRole(models.RoleSupervisor), h.ListIncidents)
		}
	}

	return r
}
