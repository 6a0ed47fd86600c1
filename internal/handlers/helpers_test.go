package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskdesk/internal/constants"
	"github.com/yukikurage/taskdesk/internal/middleware"
	"github.com/yukikurage/taskdesk/internal/models"
	"github.com/yukikurage/taskdesk/internal/repository"
	"github.com/yukikurage/taskdesk/internal/services"
)

type testEnv struct {
	repos       repository.Repositories
	userService *services.UserService
	taskService *services.TaskService
	router      *gin.Engine
}

func setupTestEnv(t *testing.T, aiService *services.AIService) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := repository.NewMemoryRepositories()
	authService := services.NewAuthService(repos.Users)
	userService := services.NewUserService(repos.Users, repos.Tasks)
	taskService := services.NewTaskService(repos.Tasks, aiService)
	analyticsService := services.NewAnalyticsService(repos.Tasks)

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	taskHandler := NewTaskHandler(taskService, userService)
	analyticsHandler := NewAnalyticsHandler(analyticsService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/logout", authHandler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(), authHandler.GetCurrentUser)

	r.GET("/api/users", userHandler.ListUsers)
	r.POST("/api/users", userHandler.CreateUser)
	r.GET("/api/users/:id", userHandler.GetUser)
	r.GET("/api/users/:id/tasks", userHandler.ListUserTasks)

	r.GET("/api/tasks", taskHandler.ListTasks)
	r.POST("/api/tasks", taskHandler.CreateTask)
	r.POST("/api/tasks/generate", taskHandler.GenerateTasks)
	r.GET("/api/tasks/:id", middleware.LoadTask(taskService), taskHandler.GetTask)
	r.PUT("/api/tasks/:id", taskHandler.UpdateTask)
	r.DELETE("/api/tasks/:id", taskHandler.DeleteTask)
	r.POST("/api/tasks/:id/progress", middleware.LoadTask(taskService), taskHandler.AdjustProgress)

	r.GET("/api/analytics/dashboard", analyticsHandler.Dashboard)
	r.GET("/api/analytics/performance", analyticsHandler.Performance)

	return testEnv{
		repos:       repos,
		userService: userService,
		taskService: taskService,
		router:      r,
	}
}

func (env testEnv) do(t *testing.T, method, url string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env testEnv) createUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	user, err := env.userService.CreateUser(services.CreateUserInput{
		Username: username,
		Email:    username + "@company.com",
		Password: password,
		FullName: username,
	})
	require.NoError(t, err)
	return user
}

func (env testEnv) createTask(t *testing.T, title string, status models.TaskStatus, assigneeID *uint64) *models.Task {
	t.Helper()
	task, err := env.taskService.CreateTask(services.CreateTaskInput{
		Title:      title,
		Priority:   models.TaskPriorityMedium,
		Status:     status,
		AssigneeID: assigneeID,
	})
	require.NoError(t, err)
	return task
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}
