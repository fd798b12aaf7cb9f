package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/yemma/internal/server/http/handlers"
	"github.com/polkiloo/yemma/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketplaceFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	webhookHandler := handlers.NewWebhookHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	profileHandler := handlers.NewProfileHandler(facade, facade)

	api := engine.Group("/api")
	api.POST("/webhooks/stripe", webhookHandler.Stripe)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))
	authed.PUT("/user/push-token", profileHandler.UpdatePushToken)
	authed.GET("/user/orders", orderHandler.List)
	authed.GET("/cooks/:id", profileHandler.Cook)
	authed.POST("/payments/intent", paymentHandler.CreateIntent)

	return engine
}
