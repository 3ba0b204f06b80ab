package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lracdim/trazer-backend/db"
	"github.com/lracdim/trazer-backend/internal/geo"
	"github.com/lracdim/trazer-backend/internal/models"
	"gorm.io/gorm"
)

type CreateSiteRequest struct {
	Name         string  `json:"name" binding:"required"`
	AddressFrom  string  `json:"address_from" binding:"required"`
	AddressTo    string  `json:"address_to" binding:"required"`
	LatFrom      float64 `json:"lat_from" binding:"required"`
	LngFrom      float64 `json:"lng_from" binding:"required"`
	LatTo        float64 `json:"lat_to" binding:"required"`
	LngTo        float64 `json:"lng_to" binding:"required"`
	BufferMeters int     `json:"buffer_meters"`
}

type SiteResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	AddressFrom  string      `json:"address_from"`
	AddressTo    string      `json:"address_to"`
	LatFrom      float64     `json:"lat_from"`
	LngFrom      float64     `json:"lng_from"`
	LatTo        float64     `json:"lat_to"`
	LngTo        float64     `json:"lng_to"`
	BufferMeters int         `json:"buffer_meters"`
	Boundary     geo.Polygon `json:"boundary"`
}

// CreateSite stores a patrol corridor. The boundary polygon is derived from
// the two anchor coordinates plus the buffer, never supplied by the client.
func CreateSite(ctx *gin.Context) {
	var req CreateSiteRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buffer := req.BufferMeters
	if buffer <= 0 {
		buffer = 100
	}

	boundary := geo.GenerateCorridorBoundary(
		geo.Point{Lat: req.LatFrom, Lng: req.LngFrom},
		geo.Point{Lat: req.LatTo, Lng: req.LngTo},
		float64(buffer),
	)

	boundaryJSON, err := json.Marshal(boundary)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode boundary"})
		return
	}

	site := models.Site{
		Name:         req.Name,
		AddressFrom:  req.AddressFrom,
		AddressTo:    req.AddressTo,
		LatFrom:      req.LatFrom,
		LngFrom:      req.LngFrom,
		LatTo:        req.LatTo,
		LngTo:        req.LngTo,
		BufferMeters: buffer,
		Boundary:     boundaryJSON,
	}

	if err := db.DB.Create(&site).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create site"})
		return
	}

	ctx.JSON(http.StatusCreated, siteResponse(site, boundary))
}

func ListSites(ctx *gin.Context) {
	var sites []models.Site

	if err := db.DB.Find(&sites).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sites"})
		return
	}

	response := make([]SiteResponse, 0, len(sites))

	for _, site := range sites {
		boundary, _ := geo.ParseBoundary(site.Boundary)
		response = append(response, siteResponse(site, boundary))
	}

	ctx.JSON(http.StatusOK, response)
}

func DeleteSite(ctx *gin.Context) {
	siteID := ctx.Param("site_id")

	var site models.Site

	if err := db.DB.Where("id = ?", siteID).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve site"})
		}
		return
	}

	if err := db.DB.Delete(&site).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete site"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func siteResponse(site models.Site, boundary geo.Polygon) SiteResponse {
	return SiteResponse{
		ID:           site.ID,
		Name:         site.Name,
		AddressFrom:  site.AddressFrom,
		AddressTo:    site.AddressTo,
		LatFrom:      site.LatFrom,
		LngFrom:      site.LngFrom,
		LatTo:        site.LatTo,
		LngTo:        site.LngTo,
		BufferMeters: site.BufferMeters,
		Boundary:     boundary,
	}
}
