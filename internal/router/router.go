package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskaza-api/internal/auth"
	"github.com/yukikurage/taskaza-api/internal/constants"
	"github.com/yukikurage/taskaza-api/internal/handlers"
	"github.com/yukikurage/taskaza-api/internal/logger"
	"github.com/yukikurage/taskaza-api/internal/middleware"
	"github.com/yukikurage/taskaza-api/internal/services"
)

// Dependencies holds everything the routes are built from.
type Dependencies struct {
	Tokens       *auth.TokenManager
	Auth         *services.AuthService
	APIKeys      *services.APIKeyService
	Verification *services.VerificationService
	Tasks        *services.TaskService

	CORSOrigins             []string
	ExposeVerificationToken bool
}

// New builds the HTTP router.
func New(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(logger.RequestLogger())
	r.Use(cors.New(corsConfig(deps.CORSOrigins)))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Tokens)
	userHandler := handlers.NewUserHandler(deps.Auth)
	apiKeyHandler := handlers.NewAPIKeyHandler(deps.APIKeys)
	verificationHandler := handlers.NewVerificationHandler(deps.Verification, deps.ExposeVerificationToken)
	taskHandler := handlers.NewTaskHandler(deps.Tasks)

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Auth)
	requireAPIKey := middleware.RequireAPIKey(deps.APIKeys)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Taskaza API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", authHandler.Signup)
			authRoutes.POST("/token", authHandler.Token)
			authRoutes.POST("/login", authHandler.Token)
			authRoutes.POST("/verify", verificationHandler.Verify)
			authRoutes.POST("/request-verification", requireAuth, requireAPIKey, verificationHandler.RequestVerification)
		}

		// Profile routes (bearer only)
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me", userHandler.GetMe)
			users.PUT("/me", userHandler.ReplaceMe)
			users.PATCH("/me", userHandler.PatchMe)
			users.DELETE("/me", userHandler.DeleteMe)
		}

		// API key routes (bearer only)
		apiKeys := api.Group("/apikeys")
		apiKeys.Use(requireAuth)
		{
			apiKeys.POST("", apiKeyHandler.CreateAPIKey)
			apiKeys.GET("", apiKeyHandler.ListAPIKeys)
			apiKeys.DELETE("/:id", apiKeyHandler.RevokeAPIKey)
		}

		// Task routes (bearer + API key)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth, requireAPIKey)
		{
			requireTask := middleware.RequireTaskAccess(deps.Tasks)

			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/bulk", taskHandler.BulkTasks)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", requireTask, taskHandler.GetTask)
			tasks.PUT("/:id", requireTask, taskHandler.ReplaceTask)
			tasks.PATCH("/:id", requireTask, taskHandler.UpdateTask)
			tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
		}
	}

	return r
}

// corsConfig allows the given origins. "*" or no origin at all allows every
// origin without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			constants.HeaderAuthorization,
			constants.HeaderAPIKey,
			constants.HeaderRequestID,
		},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}

	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
