package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/balkashynov/punchd/internal/handlers"
	"github.com/balkashynov/punchd/internal/middleware"
	"github.com/balkashynov/punchd/internal/presence"
)

// NewRouter wires the HTTP surface. Everything behind AuthRequired feeds the
// liveness tracker as a side effect of authenticating.
func NewRouter(gdb *gorm.DB, svc *presence.Service, secret string) *gin.Engine {
	r := gin.Default()

	authH := handlers.NewAuthHandler(gdb, svc, secret)
	attH := handlers.NewAttendanceHandler(gdb, svc)

	r.GET("/healthz", handlers.Health)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/logout", middleware.AuthRequired(secret, svc), authH.Logout)
	}

	authed := r.Group("/api/v1")
	authed.Use(middleware.AuthRequired(secret, svc))
	{
		authed.POST("/heartbeat", attH.Heartbeat)
		authed.GET("/attendance", attH.ListOwn)
		authed.GET("/trackers", attH.ListTrackers)
	}

	return r
}
