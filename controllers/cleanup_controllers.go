package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueapp/models"
	"github.com/yeremiapane/queueapp/services"
	"github.com/yeremiapane/queueapp/utils"
)

type CleanupController struct {
	Archiver  *services.Archiver
	Analytics *services.AnalyticsService
}

func NewCleanupController(archiver *services.Archiver, analytics *services.AnalyticsService) *CleanupController {
	return &CleanupController{Archiver: archiver, Analytics: analytics}
}

// Cleanup archives today's queue and starts a fresh one. Mode "manual" (the
// default) is the owner's reset; mode "auto" asks for the Premium cleanup and
// is refused on the free plan.
func (cc *CleanupController) Cleanup(c *gin.Context) {
	var req struct {
		Mode string `json:"mode" binding:"omitempty,oneof=manual auto"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	cleanupType := models.CleanupManual
	if req.Mode == string(models.CleanupAuto) {
		cleanupType = models.CleanupAuto
	}

	result, err := cc.Archiver.CleanupToday(c.Request.Context(), c.Param("id"), cleanupType, cleanupType == models.CleanupManual)
	if errors.Is(err, models.ErrAlreadyCleaned) {
		utils.RespondJSON(c, http.StatusOK, "Nothing to do: queue already reset today", gin.H{"already_cleaned": true})
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Queue archived", result)
}

// History lists the last archived days with their totals and cleanup type.
func (cc *CleanupController) History(c *gin.Context) {
	report, err := cc.Analytics.CleanupHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cleanup history", report)
}
