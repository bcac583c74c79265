package handlers

import (
	"net/http"

	"groupsync/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateGroup creates a group with the caller as owner
func (h *Handler) CreateGroup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.CreateGroupRequest
	if !bind(c, &req) {
		return
	}

	group, err := h.Groups.Create(c.Request.Context(), a, req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListGroups lists the caller's groups with their members
func (h *Handler) ListGroups(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	groups, err := h.Groups.ListForUser(c.Request.Context(), a)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handler) GetGroup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	group, err := h.Groups.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

// DeleteGroup removes a group and everything in it (owner only)
func (h *Handler) DeleteGroup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Groups.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetInvite shows the group behind an invite code before joining
func (h *Handler) GetInvite(c *gin.Context) {
	summary, err := h.Groups.GetByInviteCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) JoinGroup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.JoinGroupRequest
	if !bind(c, &req) {
		return
	}

	group, err := h.Groups.JoinByCode(c.Request.Context(), a, req.InviteCode)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *Handler) LeaveGroup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.Groups.Leave(c.Request.Context(), a, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GroupMembers returns the public profiles of all members
func (h *Handler) GroupMembers(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	members, err := h.Groups.MemberProfiles(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) GroupAvailability(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	grid, err := h.Groups.Availability(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

// InviteToGroup emails the invite code to someone
func (h *Handler) InviteToGroup(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.InviteRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Groups.Invite(c.Request.Context(), a, c.Param("id"), req); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Einladung wird versendet"})
}
