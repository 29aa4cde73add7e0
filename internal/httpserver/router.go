package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timekeep/internal/handler"
	"timekeep/internal/workspace"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	adminHandler *handler.AdminHandler,
	customerHandler *handler.CustomerHandler,
	projectHandler *handler.ProjectHandler,
	timerHandler *handler.TimerHandler,
	sessionHandler *handler.SessionHandler,
	analyticsHandler *handler.AnalyticsHandler,
	ws *workspace.Resolver,
	jwtSecret string,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/customers", customerHandler.List)
		auth.POST("/customers", customerHandler.Create)
		auth.GET("/customers/:id", customerHandler.Get)
		auth.PUT("/customers/:id", customerHandler.Update)
		auth.DELETE("/customers/:id", customerHandler.Delete)
		auth.GET("/customers/:id/projects", customerHandler.Projects)

		auth.GET("/projects", projectHandler.List)
		auth.POST("/projects", projectHandler.Create)
		auth.GET("/projects/:id", projectHandler.Get)
		auth.PUT("/projects/:id", projectHandler.Update)
		auth.PUT("/projects/:id/status", projectHandler.SetStatus)
		auth.DELETE("/projects/:id", projectHandler.Delete)
		auth.GET("/projects/:id/timers", projectHandler.Assignments)
		auth.POST("/projects/:id/timers", projectHandler.Assign)
		auth.GET("/projects/:id/deliverables", projectHandler.Deliverables)
		auth.POST("/projects/:id/deliverables", projectHandler.CreateDeliverable)

		auth.GET("/timers", timerHandler.List)
		auth.POST("/timers", timerHandler.Create)
		auth.PUT("/timers/:id", timerHandler.Update)
		auth.DELETE("/timers/:id", timerHandler.Delete)
		auth.DELETE("/assignments/:id", timerHandler.Unassign)
		auth.GET("/assignments/:id/sessions", sessionHandler.History)

		auth.PUT("/deliverables/:id", timerHandler.UpdateDeliverable)
		auth.DELETE("/deliverables/:id", timerHandler.DeleteDeliverable)

		auth.GET("/colors", timerHandler.ListColors)
		auth.POST("/colors", timerHandler.SaveColor)

		auth.POST("/sessions", sessionHandler.Start)
		auth.GET("/sessions/running", sessionHandler.Running)
		auth.GET("/sessions/:id", sessionHandler.Get)
		auth.POST("/sessions/:id/pause", sessionHandler.Pause)
		auth.POST("/sessions/:id/resume", sessionHandler.Resume)
		auth.POST("/sessions/:id/stop", sessionHandler.Stop)
		auth.PUT("/sessions/:id", sessionHandler.Edit)
		auth.DELETE("/sessions/:id", sessionHandler.Delete)

		auth.GET("/analytics", analyticsHandler.Report)
	}

	// Owner-only panel
	admin := r.Group("/admin")
	admin.Use(AuthMiddleware(jwtSecret), OwnerOnly(ws))
	{
		admin.GET("/summary", adminHandler.Summary)
		admin.GET("/registrations", adminHandler.ListPending)
		admin.POST("/registrations/:token/approve", adminHandler.Approve)
		admin.POST("/registrations/:token/deny", adminHandler.Deny)
		admin.GET("/team", adminHandler.ListMembers)
		admin.POST("/team", adminHandler.AddMember)
		admin.DELETE("/team/:id", adminHandler.RemoveMember)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
