package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/realtorhub/internal/container"
	"github.com/joshua-takyi/realtorhub/internal/graph"
	"github.com/joshua-takyi/realtorhub/internal/handlers"
	"github.com/joshua-takyi/realtorhub/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(c *container.Container) *gin.Engine {
	if c.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     c.Config.FrontendOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(middleware.ErrorHandler(c.Logger))
	r.Use(gin.Recovery())

	health := func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "realtorhub-api",
		})
	}
	r.GET("/health", health)

	gql := graph.NewHandler(c.Schema, c.Logger)
	r.POST("/graphql", middleware.OptionalAuth(c.UserService), gql.Serve)
	r.GET("/ws", c.Hub.ServeWS)

	cookie := handlers.CookieConfig{Secure: c.Config.IsProduction(), MaxAge: c.Tokens.TTL()}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", health)
		v1.POST("/signup", handlers.CreateUser(c.UserService))
		v1.POST("/login", handlers.Login(c.UserService, cookie))
		v1.POST("/logout", handlers.Logout(cookie))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(c.UserService, c.Logger))
	{
		protected.GET("/profile", handlers.Profile(c.UserService))
		protected.GET("/messages", handlers.GetMessages(c.ChatService))
		protected.PUT("/messages/read", handlers.MarkMessagesRead(c.ChatService))
		protected.GET("/conversations", handlers.GetConversations(c.ChatService))
	}

	return r
}
