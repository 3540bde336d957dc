package handlers

import (
	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/gin-gonic/gin"
)

// HealthHandler provides the health check endpoint.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of the service and its database.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	var openBugs int64
	models.GetDB().Model(&models.Bug{}).
		Where("status <> ?", models.StatusFixed).
		Count(&openBugs)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "bugtrail",
		"components": gin.H{
			"database":  dbStatus,
			"open_bugs": openBugs,
		},
	})
}
