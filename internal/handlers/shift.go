package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lracdim/trazer-backend/db"
	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/lracdim/trazer-backend/internal/utils"
	"gorm.io/gorm"
)

type StartShiftRequest struct {
	SiteID string `json:"site_id" binding:"required"`
}

type EndShiftRequest struct {
	ShiftID string `json:"shift_id" binding:"required"`
}

type ShiftResponse struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	SiteID    *string    `json:"site_id"`
	SiteName  string     `json:"site_name"`
}

// StartShift opens a patrol for the calling guard. A guard can hold only one
// active shift at a time.
func (h *Handlers) StartShift(ctx *gin.Context) {
	var req StartShiftRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var site models.Site

	if err := db.DB.Where("id = ?", req.SiteID).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve site"})
		}
		return
	}

	var active models.Shift

	err = db.DB.Where("guard_id = ? AND status = ?", currentUser.ID, models.ShiftActive).First(&active).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "You already have an active shift. End it before starting a new one."})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check active shift"})
		return
	}

	shift := models.Shift{
		GuardID:   currentUser.ID,
		SiteID:    &site.ID,
		Status:    models.ShiftActive,
		StartTime: time.Now(),
	}

	if err := db.DB.Create(&shift).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start shift"})
		return
	}

	h.StatusCache.Invalidate(context.Background())
	h.notifyDashboards("Shift Started",
		fmt.Sprintf("Guard %s started a shift at %s", currentUser.Name, site.Name), "info")

	ctx.JSON(http.StatusCreated, ShiftResponse{
		ID:        shift.ID,
		Status:    shift.Status,
		StartTime: shift.StartTime,
		SiteID:    shift.SiteID,
		SiteName:  site.Name,
	})
}

// EndShift completes the calling guard's shift.
func (h *Handlers) EndShift(ctx *gin.Context) {
	var req EndShiftRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var shift models.Shift

	if err := db.DB.Where("id = ? AND guard_id = ?", req.ShiftID, currentUser.ID).First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Shift not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shift"})
		}
		return
	}

	if shift.Status != models.ShiftActive {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Shift is not active"})
		return
	}

	now := time.Now()
	shift.Status = models.ShiftCompleted
	shift.EndTime = &now

	if err := db.DB.Save(&shift).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end shift"})
		return
	}

	h.StatusCache.Invalidate(context.Background())
	h.notifyDashboards("Shift Ended",
		fmt.Sprintf("Guard %s ended their shift", currentUser.Name), "info")

	ctx.JSON(http.StatusOK, ShiftResponse{
		ID:        shift.ID,
		Status:    shift.Status,
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		SiteID:    shift.SiteID,
	})
}

// ActiveShift returns the calling guard's current shift, or null.
func (h *Handlers) ActiveShift(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	shift, err := h.Shifts.FindActiveForGuard(currentUser.ID)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shift"})
		return
	}

	if shift == nil {
		ctx.JSON(http.StatusOK, gin.H{"shift": nil})
		return
	}

	siteName := "Unknown Site"
	if shift.Site != nil {
		siteName = shift.Site.Name
	}

	ctx.JSON(http.StatusOK, gin.H{"shift": ShiftResponse{
		ID:        shift.ID,
		Status:    shift.Status,
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		SiteID:    shift.SiteID,
		SiteName:  siteName,
	}})
}

type ShiftDetailResponse struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	StartTime time.Time          `json:"start_time"`
	EndTime   *time.Time         `json:"end_time"`
	Guard     gin.H              `json:"guard"`
	Site      gin.H              `json:"site"`
	Incidents []IncidentResponse `json:"incidents"`
}

// ShiftDetail returns a shift with its guard, site and incident log for the
// supervisor console.
func (h *Handlers) ShiftDetail(ctx *gin.Context) {
	shiftID := ctx.Param("shift_id")

	var shift models.Shift

	err := db.DB.Preload("Guard").Preload("Site").Preload("Incidents").
		Where("id = ?", shiftID).First(&shift).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Shift not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shift"})
		}
		return
	}

	var site gin.H
	if shift.Site != nil {
		site = gin.H{
			"id":           shift.Site.ID,
			"name":         shift.Site.Name,
			"address_from": shift.Site.AddressFrom,
			"address_to":   shift.Site.AddressTo,
		}
	}

	incidents := make([]IncidentResponse, 0, len(shift.Incidents))
	for _, incident := range shift.Incidents {
		incidents = append(incidents, IncidentResponse{
			ID:          incident.ID,
			ShiftID:     incident.ShiftID,
			Description: incident.Description,
			PhotoPath:   incident.PhotoPath,
			CreatedAt:   incident.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, ShiftDetailResponse{
		ID:        shift.ID,
		Status:    shift.Status,
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		Guard: gin.H{
			"id":       shift.Guard.ID,
			"name":     shift.Guard.Name,
			"badge_id": shift.Guard.BadgeID,
		},
		Site:      site,
		Incidents: incidents,
	})
}

// notifyDashboards pushes a toast plus a full-refresh hint to every dashboard
// viewer. Best-effort.
func (h *Handlers) notifyDashboards(title, message, level string) {
	go func() {
		h.Notifier.BroadcastToDashboards("notification:new", gin.H{
			"title":   title,
			"message": message,
			"type":    level,
		})
		h.Notifier.BroadcastToDashboards("dashboard:refresh", nil)
	}()
}
