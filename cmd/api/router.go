package main

import (
	"context"
	"net/http"
	"time"

	"writespace-backend/internal/infrastructure/storage"
	"writespace-backend/internal/shared/middleware"
	"writespace-backend/pkg/container"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	// two post images plus form fields
	router.MaxMultipartMemory = 2*storage.DefaultMaxImageSize + 1<<20

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.AllowedOrigins),
		middleware.Metrics(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		userGroup := api.Group("/user")
		setupAuthRoutes(userGroup, c)
		setupProfileRoutes(userGroup, c)
		setupBlogRoutes(userGroup, c)
	}

	return router
}

// ========================================
// AUTH ROUTES (public)
// ========================================
func setupAuthRoutes(g *gin.RouterGroup, c *container.Container) {
	h := c.UserHandler

	g.POST("/signup", h.Signup)
	g.POST("/resend-otp", h.ResendOTP)
	g.POST("/verifyOtp", h.VerifyOTP)
	g.POST("/login", h.Login)
	g.POST("/google-auth", h.GoogleAuth)
	g.POST("/refresh-token", h.RefreshToken)
	g.POST("/logout", h.Logout)
	g.POST("/forgot-password", h.ForgotPassword)
	g.GET("/validate-reset-token/:token", h.ValidateResetToken)
	g.POST("/reset-password/:token", h.ResetPassword)
}

// ========================================
// PROFILE ROUTES
// ========================================
func setupProfileRoutes(g *gin.RouterGroup, c *container.Container) {
	authed := g.Group("", middleware.Authenticate(c.JWTManager))
	{
		authed.GET("/profile", c.UserHandler.GetProfile)
		authed.PUT("/profile", c.UserHandler.UpdateProfile)
	}
}

// ========================================
// BLOG ROUTES
// ========================================
func setupBlogRoutes(g *gin.RouterGroup, c *container.Container) {
	h := c.BlogHandler

	g.GET("/all-blogs", h.ListPublishedBlogs)

	authed := g.Group("", middleware.Authenticate(c.JWTManager))
	{
		authed.POST("/create-blog", h.CreateBlog)
		authed.PUT("/edit-blog/:id", h.EditBlog)
		authed.PATCH("/blogs/:blogId/status", h.UpdateStatus)
		authed.GET("/blogs", h.ListUserBlogs)
		authed.POST("/ai-suggestion", h.AISuggestion)
	}
}

// ========================================
// HEALTH
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		services := gin.H{}

		check := func(name string, fn func(context.Context) error) {
			if err := fn(ctx); err != nil {
				services[name] = "error: " + err.Error()
				status = "degraded"
				return
			}
			services[name] = "ok"
		}
		check("database", appCtx.DB.HealthCheck)
		check("redis", appCtx.Cache.Ping)
		check("storage", appCtx.Storage.HealthCheck)

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  services,
		})
	}
}
