package catalog

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LocationsHandler handles GET /api/meta/locations.
func LocationsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.Locations(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list locations", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"options": LabelOptions(entries)})
	}
}

// JobOptionsHandler handles GET /api/meta/job-options.
func JobOptionsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.JobOptions(c.Request.Context())
		if err != nil {
			slog.Error("Failed to list job options", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
