package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sugvoyage-backend/internal/config"
	"github.com/ignatzorin/sugvoyage-backend/internal/http/handlers"
	"github.com/ignatzorin/sugvoyage-backend/internal/http/middleware"
)

// Handlers собирает все HTTP хэндлеры приложения.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Profile *handlers.ProfileHandler
	Post    *handlers.PostHandler
	Comment *handlers.CommentHandler
	Spot    *handlers.SpotHandler
	WS      *handlers.WSHandler
	Health  *handlers.HealthHandler
}

// SetupRouter регистрирует маршруты API.
func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	optionalAuth := middleware.OptionalAuth(tokens)
	requireAuth := middleware.AuthMiddleware(tokens)
	writeLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit*3, cfg.RateLimitPeriod)
	userIDParam := middleware.UUIDValidator("userId", "User ID is required")
	postIDParam := middleware.UUIDValidator("postId", "Invalid post ID")

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		limited := authGroup.Group("/")
		limited.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
		limited.POST("/send-verification", h.Auth.SendVerification)
		limited.POST("/register", h.Auth.Register)
		limited.POST("/login", h.Auth.Login)

		authGroup.GET("/users", h.Profile.ListUsers)
		authGroup.GET("/profile/:userId", userIDParam, h.Profile.GetProfile)
		authGroup.PUT("/profile/:userId", userIDParam, optionalAuth, h.Profile.UpdateProfile)
	}

	posts := api.Group("/posts")
	posts.Use(optionalAuth)
	{
		posts.POST("", writeLimit, h.Post.CreatePost)
		posts.GET("", h.Post.ListPosts)
		posts.GET("/user/:userId", userIDParam, h.Post.ListUserPosts)
		posts.GET("/:id", middleware.UUIDValidator("id", "Invalid post ID"), h.Post.GetPost)
		posts.POST("/:id/like", middleware.UUIDValidator("id", "Invalid post ID"), h.Post.LikePost)
	}

	comments := api.Group("/comments")
	comments.Use(optionalAuth)
	{
		comments.POST("/posts/:postId/comments", postIDParam, writeLimit, h.Comment.AddComment)
		comments.GET("/posts/:postId/comments", postIDParam, h.Comment.ListComments)
		comments.GET("/posts/:postId/comments/count", postIDParam, h.Comment.CountComments)

		commentIDParam := middleware.UUIDValidator("id", "Invalid comment ID")
		comments.GET("/comments/:id", commentIDParam, h.Comment.GetComment)
		comments.DELETE("/comments/:id", commentIDParam, requireAuth, h.Comment.DeleteComment)
		comments.POST("/comments/:id/like", commentIDParam, h.Comment.LikeComment)
	}

	api.GET("/spots", h.Spot.ListSpots)
	api.GET("/spots/nearby", h.Spot.Nearby)
	api.GET("/ws/spots", h.WS.Spots)

	return r
}
