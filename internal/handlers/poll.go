package handlers

import (
	"net/http"

	"groupsync/internal/models"

	"github.com/gin-gonic/gin"
)

// ListPolls returns every poll of the group with results from the caller's view
func (h *Handler) ListPolls(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	polls, err := h.Polls.List(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, polls)
}

func (h *Handler) CreatePoll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.CreatePollRequest
	if !bind(c, &req) {
		return
	}

	poll, err := h.Polls.Create(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

func (h *Handler) GetPoll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	poll, err := h.Polls.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// Vote toggles the caller's vote on an option and returns fresh results
func (h *Handler) Vote(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.VoteRequest
	if !bind(c, &req) {
		return
	}

	results, err := h.Polls.Vote(c.Request.Context(), a, c.Param("id"), req.OptionID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) DeletePoll(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Polls.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
