// Package router assembles the HTTP surface of the service.
package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yukikurage/taskdesk/internal/constants"
	"github.com/yukikurage/taskdesk/internal/handlers"
	"github.com/yukikurage/taskdesk/internal/middleware"
	"github.com/yukikurage/taskdesk/internal/repository"
	"github.com/yukikurage/taskdesk/internal/services"
)

// Options carries the dependencies the router wires into handlers.
type Options struct {
	Repos        repository.Repositories
	AIService    *services.AIService
	SessionStore sessions.Store
	Logger       zerolog.Logger
	Registry     *prometheus.Registry
}

// New builds the gin engine with middleware and all API routes.
func New(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(opts.Logger))
	if opts.Registry != nil {
		r.Use(middleware.NewMetrics(opts.Registry).Handler())
	}
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, opts.SessionStore))

	authService := services.NewAuthService(opts.Repos.Users)
	userService := services.NewUserService(opts.Repos.Users, opts.Repos.Tasks)
	taskService := services.NewTaskService(opts.Repos.Tasks, opts.AIService)
	analyticsService := services.NewAnalyticsService(opts.Repos.Tasks)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(taskService, userService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Management API is running",
		})
	})

	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.GET("/:id/tasks", userHandler.ListUserTasks)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", middleware.LoadTask(taskService), taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/progress", middleware.LoadTask(taskService), taskHandler.AdjustProgress)
		}

		analytics := api.Group("/analytics")
		{
			analytics.GET("/dashboard", analyticsHandler.Dashboard)
			analytics.GET("/performance", analyticsHandler.Performance)
		}
	}

	return r
}
