package handlers

import (
	"time"

	"groupsync/internal/auth"
	"groupsync/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the settings the router needs from the service config
type RouterConfig struct {
	JWTSecret      string
	InternalAPIKey string
	CORSOrigins    []string
}

// NewRouter wires every route onto a fresh engine
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger())

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AddAllowHeaders("Authorization", auth.InternalKeyHeader)
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", HealthHandler)

	protected := router.Group("")
	protected.Use(auth.Middleware(cfg.JWTSecret))
	{
		protected.GET("/invites/:code", h.GetInvite)

		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpsertProfile)
		protected.POST("/profile/avatar", h.UploadAvatar)

		protected.GET("/places/:placeId", h.LookupPlace)

		protected.GET("/groups", h.ListGroups)
		protected.POST("/groups", h.CreateGroup)
		protected.POST("/groups/join", h.JoinGroup)
		protected.GET("/groups/:id", h.GetGroup)
		protected.DELETE("/groups/:id", h.DeleteGroup)
		protected.DELETE("/groups/:id/membership", h.LeaveGroup)
		protected.GET("/groups/:id/members", h.GroupMembers)
		protected.GET("/groups/:id/availability", h.GroupAvailability)
		protected.POST("/groups/:id/invites", h.InviteToGroup)

		protected.GET("/groups/:id/tasks", h.ListTasks)
		protected.POST("/groups/:id/tasks", h.CreateTask)
		protected.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
		protected.PATCH("/tasks/:id/assignee", h.AssignTask)
		protected.DELETE("/tasks/:id", h.DeleteTask)

		protected.GET("/groups/:id/appointments", h.ListAppointments)
		protected.POST("/groups/:id/appointments", h.CreateAppointment)
		protected.PATCH("/appointments/:id", h.UpdateAppointment)
		protected.DELETE("/appointments/:id", h.DeleteAppointment)

		protected.GET("/groups/:id/polls", h.ListPolls)
		protected.POST("/groups/:id/polls", h.CreatePoll)
		protected.GET("/polls/:id", h.GetPoll)
		protected.POST("/polls/:id/votes", h.Vote)
		protected.DELETE("/polls/:id", h.DeletePoll)

		protected.GET("/groups/:id/links", h.ListLinks)
		protected.POST("/groups/:id/links", h.CreateLink)
		protected.PATCH("/links/:id", h.UpdateLink)
		protected.DELETE("/links/:id", h.DeleteLink)
	}

	internal := router.Group("/internal")
	internal.Use(auth.ServiceKey(cfg.InternalAPIKey))
	{
		internal.POST("/send-email", h.SendEmail)
		internal.POST("/notify", h.Notify)
		internal.POST("/reminders/run", h.RunReminders)
	}

	return router
}
