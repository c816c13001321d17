package router

import (
	"github.com/gin-gonic/gin"
	"github.com/binghan60/EKERA-LunchBOT/config"
	"github.com/binghan60/EKERA-LunchBOT/internal/app/controller"
	"github.com/binghan60/EKERA-LunchBOT/internal/middleware"
	"github.com/binghan60/EKERA-LunchBOT/pkg/mailer"
)

type Router struct {
	restaurantController  *controller.RestaurantController
	bindingController     *controller.BindingController
	groupConfigController *controller.GroupConfigController
	drawController        *controller.DrawController
	historyController     *controller.HistoryController
	webhookController     *controller.WebhookController
	alerts                mailer.Mailer
	config                *config.Config
}

func NewRouter(
	restaurantController *controller.RestaurantController,
	bindingController *controller.BindingController,
	groupConfigController *controller.GroupConfigController,
	drawController *controller.DrawController,
	historyController *controller.HistoryController,
	webhookController *controller.WebhookController,
	alerts mailer.Mailer,
	cfg *config.Config,
) *Router {
	return &Router{
		restaurantController:  restaurantController,
		bindingController:     bindingController,
		groupConfigController: groupConfigController,
		drawController:        drawController,
		historyController:     historyController,
		webhookController:     webhookController,
		alerts:                alerts,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(r.alerts))
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "LunchBOT API is running",
		})
	})

	// LINE posts webhooks outside the versioned API surface.
	router.POST("/webhook", r.webhookController.HandleWebhook)

	v1 := router.Group("/api/v1")
	{
		restaurants := v1.Group("/restaurants")
		{
			restaurants.GET("", r.restaurantController.ListRestaurants)
			restaurants.POST("", r.restaurantController.CreateRestaurant)
			restaurants.GET("/:id", r.restaurantController.GetRestaurant)
			restaurants.PUT("/:id", r.restaurantController.UpdateRestaurant)
			restaurants.POST("/:id/images", r.restaurantController.AddMenuImages)
			restaurants.PATCH("/:id/deactivate", r.restaurantController.DeactivateRestaurant)
			restaurants.DELETE("/:id", r.restaurantController.DeleteRestaurant)
		}

		bindings := v1.Group("/bindings")
		{
			bindings.GET("", r.bindingController.ListBindings)
			bindings.POST("", r.bindingController.CreateBinding)
			bindings.PUT("/:id", r.bindingController.UpdateBinding)
			bindings.PATCH("/:id/toggle", r.bindingController.ToggleBinding)
			bindings.DELETE("/:id", r.bindingController.DeleteBinding)
		}

		v1.GET("/offices", r.bindingController.ListOffices)

		groups := v1.Group("/groups/:groupId")
		{
			groups.GET("/config", r.groupConfigController.GetConfig)
			groups.POST("/config", r.groupConfigController.CreateConfig)
			groups.PUT("/config", r.groupConfigController.UpdateConfig)
			groups.POST("/offices", r.groupConfigController.AddOffice)
			groups.DELETE("/offices/:name", r.groupConfigController.RemoveOffice)
			groups.PUT("/current-office", r.groupConfigController.SetCurrentOffice)
			groups.PUT("/notification", r.groupConfigController.SetNotification)
		}

		draw := v1.Group("/draw")
		{
			draw.GET("", r.drawController.Draw)
			draw.POST("/notify", r.drawController.DrawAndNotify)
		}

		history := v1.Group("/history")
		{
			history.GET("", r.historyController.ListHistory)
			history.GET("/statistics", r.historyController.Statistics)
			history.GET("/statistics/export", r.historyController.ExportStatistics)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
