package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lracdim/trazer-backend/internal/alerts"
	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/lracdim/trazer-backend/internal/utils"
)

// ListAlerts returns alerts newest-first, optionally filtered by type and
// resolution state.
func (h *Handlers) ListAlerts(ctx *gin.Context) {
	filter := alerts.Filter{Type: ctx.Query("type")}

	switch ctx.Query("resolved") {
	case "true":
		resolved := true
		filter.Resolved = &resolved
	case "false":
		resolved := false
		filter.Resolved = &resolved
	}

	summaries, err := h.Ledger.List(filter)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alerts"})
		return
	}

	ctx.JSON(http.StatusOK, summaries)
}

func (h *Handlers) ResolveAlert(ctx *gin.Context) {
	alertID := ctx.Param("alert_id")

	alert, err := h.Ledger.Resolve(alertID)

	if err != nil {
		if errors.Is(err, alerts.ErrAlertNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve alert"})
		}
		return
	}

	h.StatusCache.Invalidate(context.Background())

	ctx.JSON(http.StatusOK, alert)
}

func (h *Handlers) CountUnresolvedAlerts(ctx *gin.Context) {
	count, err := h.Ledger.CountUnresolved()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count alerts"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

type TriggerSOSRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// TriggerSOS raises an sos alert on the calling guard's active shift and
// pushes it to every dashboard immediately.
func (h *Handlers) TriggerSOS(ctx *gin.Context) {
	var req TriggerSOSRequest

	// Body is optional; a panic press without a GPS lock still goes through.
	_ = ctx.ShouldBindJSON(&req)

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
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No active shift found to attach SOS to"})
		return
	}

	message := "SOS Triggered (Location Unavailable)"
	if req.Latitude != nil && req.Longitude != nil {
		message = fmt.Sprintf("SOS Triggered at Lat: %v, Lng: %v", *req.Latitude, *req.Longitude)
	}

	alert, err := h.Ledger.Create(shift.ID, models.AlertSOS, message)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert"})
		return
	}

	siteName := "Unknown Site"
	if shift.Site != nil {
		siteName = shift.Site.Name
	}

	go func() {
		h.Notifier.BroadcastToDashboards("alert:new", alerts.Summary{
			ID:         alert.ID,
			Type:       alert.Type,
			Message:    alert.Message,
			CreatedAt:  alert.CreatedAt,
			ResolvedAt: alert.ResolvedAt,
			Shift: alerts.ShiftInfo{
				ID:        shift.ID,
				GuardName: shift.Guard.Name,
				SiteName:  siteName,
			},
		})
		h.Notifier.BroadcastToDashboards("notification:new", gin.H{
			"title":   "SOS ALERT",
			"message": fmt.Sprintf("Guard %s triggered SOS!", shift.Guard.Name),
			"type":    "error",
		})
		h.Notifier.BroadcastToDashboards("dashboard:refresh", nil)
	}()

	ctx.JSON(http.StatusOK, gin.H{"message": "SOS Alert Dispatched to HQ"})
}
