package handlers

import (
	"net/http"

	"groupsync/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTasks(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	tasks, err := h.Tasks.List(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask adds a task to the group and notifies the other members
func (h *Handler) CreateTask(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.CreateTaskRequest
	if !bind(c, &req) {
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.UpdateTaskStatusRequest
	if !bind(c, &req) {
		return
	}

	task, err := h.Tasks.UpdateStatus(c.Request.Context(), a, c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// AssignTask sets or clears the assignee
func (h *Handler) AssignTask(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.AssignTaskRequest
	if !bind(c, &req) {
		return
	}

	task, err := h.Tasks.Assign(c.Request.Context(), a, c.Param("id"), req.AssignedTo)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Tasks.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
