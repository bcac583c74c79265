package handlers

import (
	"net/http"

	"groupsync/internal/email"
	"groupsync/internal/logger"
	"groupsync/internal/services"

	"github.com/gin-gonic/gin"
)

// SendEmailRequest is the body of POST /internal/send-email: a type plus the flat template data
type SendEmailRequest struct {
	Type email.Type `json:"type" binding:"required"`
	email.Data
}

// SendEmail renders and dispatches a single email synchronously
func (h *Handler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if !bind(c, &req) {
		return
	}

	id, err := h.Mailer.Send(c.Request.Context(), req.Type, req.Data)
	if err != nil {
		handleError(c, err)
		return
	}
	logger.Named("http").Infof("Sent %s email to %s (id %s)", req.Type, req.To, id)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// Notify fans an event out to a group and waits for every dispatch
func (h *Handler) Notify(c *gin.Context) {
	var req services.NotifyRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.Notifier.Notify(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunReminders runs one reminder scan, for an external scheduler
func (h *Handler) RunReminders(c *gin.Context) {
	result := h.Scanner.Run(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
