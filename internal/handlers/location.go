package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lracdim/trazer-backend/internal/tracking"
	"github.com/lracdim/trazer-backend/internal/utils"
)

type IngestLocationsRequest struct {
	ShiftID   string                 `json:"shift_id" binding:"required"`
	Locations []tracking.SampleInput `json:"locations" binding:"required,min=1,dive"`
}

// IngestLocations accepts a batched position report from a guard device.
// Batches for stale or foreign shifts come back as an empty result, not an
// error: devices keep sending after a shift ends and that telemetry is
// dropped on the floor.
func (h *Handlers) IngestLocations(ctx *gin.Context) {
	var req IngestLocationsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "shift_id and locations array required"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	result, err := h.Engine.IngestBatch(currentUser.ID, req.ShiftID, req.Locations)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest locations"})
		return
	}

	if len(result.Alerts) > 0 {
		h.StatusCache.Invalidate(context.Background())
	}

	ctx.JSON(http.StatusOK, result)
}

// ActiveGuardStatuses serves the live map: one entry per active shift with
// position and derived status.
func (h *Handlers) ActiveGuardStatuses(ctx *gin.Context) {
	if entries, ok := h.StatusCache.Get(ctx.Request.Context()); ok {
		ctx.JSON(http.StatusOK, entries)
		return
	}

	entries, err := h.Projector.ActiveGuardStatuses()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute guard statuses"})
		return
	}

	h.StatusCache.Set(ctx.Request.Context(), entries)

	ctx.JSON(http.StatusOK, entries)
}

// ShiftRoute returns a shift's ordered location trail for playback.
func (h *Handlers) ShiftRoute(ctx *gin.Context) {
	shiftID := ctx.Param("shift_id")

	route, err := h.Engine.ShiftRoute(shiftID)

	if err != nil {
		if errors.Is(err, tracking.ErrShiftNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Shift not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve route"})
		}
		return
	}

	ctx.JSON(http.StatusOK, route)
}
