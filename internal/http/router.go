package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fieldroute/backend/internal/config"
	"github.com/fieldroute/backend/internal/db"
	"github.com/fieldroute/backend/internal/http/handlers"
	"github.com/fieldroute/backend/internal/http/middleware"
	"github.com/fieldroute/backend/internal/models"
	"github.com/fieldroute/backend/internal/notify"
	"github.com/fieldroute/backend/internal/service"

	_ "github.com/fieldroute/backend/docs"
)

func Router(cfg config.Config, store *db.Store, visits *service.VisitService, assignments *service.AssignmentService, notifications *notify.Service, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:         store,
		Visits:        visits,
		Assignments:   assignments,
		Notifications: notifications,
		Validator:     validator.New(),
		Logger:        logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.Auth(cfg.JWTSecret))

	visitRoutes := api.Group("/visits")
	{
		visitRoutes.POST("/check-in/qr", h.CheckInByQR)
		visitRoutes.POST("/:id/complete", h.CompleteVisit)
		visitRoutes.POST("/:id/skip", h.SkipVisit)
		visitRoutes.GET("/today", h.TodayVisits)
		visitRoutes.GET("/open", h.OpenVisits)
		visitRoutes.GET("/:id", h.VisitByID)
	}

	assignmentRoutes := api.Group("/assignments")
	{
		assignmentRoutes.GET("/mine", h.MyAssignments)
		assignmentRoutes.GET("/mine/:id", h.MyAssignmentByID)
	}

	notificationRoutes := api.Group("/notifications")
	{
		notificationRoutes.GET("", h.NotificationsList)
		notificationRoutes.GET("/unread", h.UnreadNotifications)
		notificationRoutes.GET("/unread/count", h.UnreadNotificationCount)
		notificationRoutes.POST("/:id/read", h.MarkNotificationRead)
		notificationRoutes.POST("/read-all", h.MarkAllNotificationsRead)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/visits/dealer/:dealerId", h.VisitsByDealerOnly)
		admin.GET("/visits/dealer/:dealerId/date/:date", h.VisitsByDealerAndDate)
		admin.GET("/visits/store/:storeId/date/:date", h.VisitsByStoreAndDate)
		admin.GET("/visits/filter", h.FilterVisits)
		admin.POST("/visits", h.CreateManualVisit)
		admin.PUT("/visits/:id", h.UpdateVisit)

		admin.POST("/assignments", h.CreateAssignment)
		admin.PUT("/assignments/:id", h.UpdateAssignment)
		admin.PATCH("/assignments/:id/toggle", h.ToggleAssignment)
		admin.GET("/assignments", h.AssignmentsList)
		admin.GET("/assignments/:id", h.AssignmentByID)
		admin.GET("/assignments/dealer/:dealerId", h.AssignmentsByDealer)
		admin.GET("/assignments/store/:storeId", h.AssignmentsByStore)

		admin.POST("/stores", h.CreateStore)
		admin.GET("/stores", h.StoresList)
		admin.GET("/stores/:id", h.StoreByID)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
