package handlers

import (
	"net/http"

	"groupsync/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListLinks(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	links, err := h.Links.List(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// CreateLink pins a link to the group
func (h *Handler) CreateLink(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.LinkRequest
	if !bind(c, &req) {
		return
	}

	link, err := h.Links.Create(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *Handler) UpdateLink(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.LinkRequest
	if !bind(c, &req) {
		return
	}

	link, err := h.Links.Update(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *Handler) DeleteLink(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Links.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
