package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/http/handlers"
	"github.com/adotepet/adotepet-backend/internal/http/middleware"
	"github.com/adotepet/adotepet-backend/internal/service"
)

// SetupAPIRouter собирает маршруты основного API процесса.
func SetupAPIRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	petHandler *handlers.PetHandler,
	reportHandler *handlers.ReportHandler,
	interactionHandler *handlers.InteractionHandler,
	favoriteHandler *handlers.FavoriteHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/me", authHandler.Me)
		protectedAuth.PUT("/me", authHandler.UpdateProfile)
	}

	// Публичные маршруты
	api.GET("/pets", petHandler.List)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/pets/feed", petHandler.Feed)
		protected.GET("/pets/mine", petHandler.ListMine)
		protected.POST("/pets", petHandler.Create)
		protected.GET("/pets/:id", middleware.UUIDValidator("id"), petHandler.Get)
		protected.PUT("/pets/:id", middleware.UUIDValidator("id"), petHandler.Update)
		protected.DELETE("/pets/:id", middleware.UUIDValidator("id"), petHandler.Delete)
		protected.PATCH("/pets/:id/adopt", middleware.UUIDValidator("id"), petHandler.MarkAdopted)
		protected.POST("/pets/:id/photos", middleware.UUIDValidator("id"), petHandler.AddPhoto)
		protected.DELETE("/pets/:id/photos/:photoId", middleware.UUIDValidator("id"), middleware.UUIDValidator("photoId"), petHandler.DeletePhoto)

		protected.POST("/reports", reportHandler.Create)
		protected.GET("/reports/mine", reportHandler.ListMine)
		protected.GET("/reports/:id", middleware.UUIDValidator("id"), reportHandler.Get)
		protected.GET("/pets/:id/reports", middleware.UUIDValidator("id"), reportHandler.ListByPet)

		protected.POST("/interactions", interactionHandler.Record)
		protected.GET("/interactions", interactionHandler.List)
		protected.DELETE("/interactions/:petId", middleware.UUIDValidator("petId"), interactionHandler.Remove)

		protected.POST("/favorites", favoriteHandler.AddFavorite)
		protected.GET("/favorites", favoriteHandler.ListFavorites)
		protected.GET("/favorites/:petId", middleware.UUIDValidator("petId"), favoriteHandler.CheckFavorite)
		protected.DELETE("/favorites/:petId", middleware.UUIDValidator("petId"), favoriteHandler.RemoveFavorite)
	}

	// Маршруты модерации, доступны только администраторам
	admin := api.Group("/")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.AdminOnly())
	{
		admin.GET("/users", authHandler.ListUsers)
		admin.GET("/reports", reportHandler.ListByStatus)
		admin.PATCH("/reports/:id/status", middleware.UUIDValidator("id"), reportHandler.UpdateStatus)
	}

	return r
}

// SetupNotificationRouter собирает маршруты сервиса уведомлений.
func SetupNotificationRouter(
	cfg *config.Config,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", wsHandler.Handle)

	api := r.Group("/api")

	notifications := api.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(tokenManager))
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/test", notificationHandler.SendTest)
		notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
		notifications.PATCH("/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		notifications.DELETE("/:id", middleware.UUIDValidator("id"), notificationHandler.Delete)
	}

	adminNotifications := api.Group("/notifications")
	adminNotifications.Use(middleware.AuthMiddleware(tokenManager), middleware.AdminOnly())
	{
		adminNotifications.POST("", notificationHandler.AdminCreate)
		adminNotifications.GET("/stats", notificationHandler.Stats)
	}

	return r
}
