package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/intent-app/auth-service/ports"
	"github.com/intent-app/auth-service/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, limiter ports.RateLimitStore) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Authorization", "X-Client-Info", "Apikey", "Content-Type",
			"X-SIWE-Message", "X-SIWE-Signature", "X-SIWE-Address",
		},
		MaxAge: 12 * time.Hour,
	}))

	handlers := NewAuthHandlers(authService)

	auth := router.Group("/auth")
	{
		auth.POST("/siwe", RateLimit(limiter), handlers.SiweLogin)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/health", handlers.Health)
	}

	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
