package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lracdim/trazer-backend/db"
	"github.com/lracdim/trazer-backend/internal/models"
	"github.com/lracdim/trazer-backend/internal/utils"
)

type CreateIncidentRequest struct {
	Description string `json:"description" binding:"required"`
	PhotoPath   string `json:"photo_path"`
}

type IncidentResponse struct {
	ID          string    `json:"id"`
	ShiftID     string    `json:"shift_id"`
	GuardName   string    `json:"guard_name,omitempty"`
	SiteName    string    `json:"site_name,omitempty"`
	Description string    `json:"description"`
	PhotoPath   string    `json:"photo_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateIncident files a report against the calling guard's active shift.
func (h *Handlers) CreateIncident(ctx *gin.Context) {
	var req CreateIncidentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

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
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No active shift to report against"})
		return
	}

	incident := models.Incident{
		ShiftID:     shift.ID,
		Description: req.Description,
		PhotoPath:   req.PhotoPath,
	}

	if err := db.DB.Create(&incident).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create incident"})
		return
	}

	h.notifyDashboards("Incident Reported",
		fmt.Sprintf("Guard %s reported an incident", currentUser.Name), "warning")

	ctx.JSON(http.StatusCreated, IncidentResponse{
		ID:          incident.ID,
		ShiftID:     incident.ShiftID,
		Description: incident.Description,
		PhotoPath:   incident.PhotoPath,
		CreatedAt:   incident.CreatedAt,
	})
}

// ListIncidents returns every incident with guard and site context, newest
// first.
func (h *Handlers) ListIncidents(ctx *gin.Context) {
	var incidents []models.Incident

	err := db.DB.Preload("Shift.Guard").Preload("Shift.Site").
		Order("created_at DESC").
		Find(&incidents).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	response := make([]IncidentResponse, 0, len(incidents))

	for _, incident := range incidents {
		siteName := "Unknown Site"
		if incident.Shift.Site != nil {
			siteName = incident.Shift.Site.Name
		}

		response = append(response, IncidentResponse{
			ID:          incident.ID,
			ShiftID:     incident.ShiftID,
			GuardName:   incident.Shift.Guard.Name,
			SiteName:    siteName,
			Description: incident.Description,
			PhotoPath:   incident.PhotoPath,
			CreatedAt:   incident.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, response)
}
