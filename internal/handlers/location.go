package handlers

import (
	"errors"
	"net/http"

	"groupsync/internal/logger"
	"groupsync/internal/services"

	"github.com/gin-gonic/gin"
)

// LookupPlace resolves a Google Place ID into the location string stored on appointments
func (h *Handler) LookupPlace(c *gin.Context) {
	if h.Places == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ortssuche ist nicht verfügbar"})
		return
	}

	placeID := c.Param("placeId")
	location, err := h.Places.ResolvePlace(c.Request.Context(), placeID)
	if err != nil {
		if errors.Is(err, services.ErrNoAPIKey) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ortssuche ist nicht verfügbar"})
			return
		}
		logger.Named("http").Warnf("Error validating place %s: %v", placeID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ort konnte nicht gefunden werden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"place_id": placeID, "location": location})
}
