package handlers

import (
	"errors"
	"net/http"

	"groupsync/internal/auth"
	"groupsync/internal/email"
	"groupsync/internal/logger"
	"groupsync/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler bundles the services the HTTP layer talks to
type Handler struct {
	Groups       *services.GroupService
	Profiles     *services.ProfileService
	Tasks        *services.TaskService
	Appointments *services.AppointmentService
	Polls        *services.PollService
	Links        *services.LinkService

	Notifier *services.Notifier
	Mailer   *email.Mailer
	Scanner  *services.ReminderScanner

	// Optional integrations; nil disables the endpoint
	Avatars services.AvatarUploader
	Places  services.PlaceResolver
}

// handleError maps service errors onto status codes and logs unexpected ones
func handleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Interner Serverfehler"

	var dispatchErr *email.DispatchError
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, email.ErrUnknownType),
		errors.Is(err, email.ErrMissingRecipient):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrGroupFull):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrPollEnded):
		status, message = http.StatusConflict, err.Error()
	case errors.As(err, &dispatchErr):
		status, message = http.StatusBadGateway, dispatchErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Named("http").Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": message})
}

// bind decodes the JSON body and answers 400 on failure
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ungültige Eingabe: " + err.Error()})
		return false
	}
	return true
}

// actor returns the authenticated user or answers 401
func actor(c *gin.Context) (services.Actor, bool) {
	a, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return a, ok
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
