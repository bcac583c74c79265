package handlers

import (
	"net/http"

	"groupsync/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAppointments(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	appointments, err := h.Appointments.List(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.AppointmentRequest
	if !bind(c, &req) {
		return
	}

	appointment, err := h.Appointments.Create(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

// UpdateAppointment replaces the appointment's fields (creator only)
func (h *Handler) UpdateAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.AppointmentRequest
	if !bind(c, &req) {
		return
	}

	appointment, err := h.Appointments.Update(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Appointments.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
