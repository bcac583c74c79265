package handlers

import (
	"net/http"

	"groupsync/internal/auth"
	"groupsync/internal/logger"
	"groupsync/internal/models"
	"groupsync/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	profile, err := h.Profiles.Get(c.Request.Context(), a)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile creates or updates the caller's profile. The email falls back
// to the token's email claim.
func (h *Handler) UpsertProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req models.UpsertProfileRequest
	if !bind(c, &req) {
		return
	}
	if req.Email == "" {
		req.Email = auth.EmailFrom(c)
	}

	profile, err := h.Profiles.Upsert(c.Request.Context(), a, req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadAvatar accepts a multipart "file" field and stores it as the profile picture
func (h *Handler) UploadAvatar(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if h.Avatars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Bild-Upload ist nicht verfügbar"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keine Datei hochgeladen"})
		return
	}
	if err := services.ValidateAvatar(header.Filename, header.Size); err != nil {
		handleError(c, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer file.Close()

	url, err := h.Avatars.UploadAvatar(c.Request.Context(), file, header.Filename, a.UserID)
	if err != nil {
		logger.Named("http").Errorf("Avatar upload for %s failed: %v", a.UserID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Bild konnte nicht hochgeladen werden"})
		return
	}

	profile, err := h.Profiles.SetAvatar(c.Request.Context(), a, url)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
