package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasknest/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	Task   *apiHandler.TaskHandler
	Sync   *apiHandler.SyncHandler
	Rings  *apiHandler.RingsHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/signup", handlers.Auth.Signup)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))
	r.GET("/api/v1/auth/me", authMiddleware(handlers.Auth.Me))

	// Task CRUD
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	// Offline sync reconciliation
	r.POST("/api/v1/sync/tasks", authMiddleware(handlers.Sync.UpsertBatch))
	r.DELETE("/api/v1/sync/tasks", authMiddleware(handlers.Sync.DeleteBatch))

	// Temporal context for the suggestion consumer
	r.GET("/api/v1/context/rings", authMiddleware(handlers.Rings.GetRings))

	return r
}
