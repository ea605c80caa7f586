package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/sugvoyage-backend/internal/dto"
	"github.com/ignatzorin/sugvoyage-backend/internal/geo"
	"github.com/ignatzorin/sugvoyage-backend/internal/http/handlers/common"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
)

// SpotService - справочник мест и поиск рядом.
type SpotService interface {
	List(ctx context.Context) ([]models.Spot, error)
	Nearby(ctx context.Context, at geo.Point, radiusKm float64) (*models.SpotsInRadius, error)
}

type SpotHandler struct {
	spots SpotService
}

func NewSpotHandler(spots SpotService) *SpotHandler {
	return &SpotHandler{spots: spots}
}

// ListSpots обрабатывает GET /api/spots.
func (h *SpotHandler) ListSpots(c *gin.Context) {
	spots, err := h.spots.List(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SpotsResponse{Success: true, Spots: spots})
}

// Nearby обрабатывает GET /api/spots/nearby?lat=&lng=&radius=.
func (h *SpotHandler) Nearby(c *gin.Context) {
	lat, okLat := common.ParseFloatQuery(c, "lat")
	lng, okLng := common.ParseFloatQuery(c, "lng")
	if !okLat || !okLng {
		common.Fail(c, apperror.Validation("Latitude and longitude are required"))
		return
	}
	radius, _ := common.ParseFloatQuery(c, "radius")

	res, err := h.spots.Nearby(c.Request.Context(), geo.Point{Latitude: lat, Longitude: lng}, radius)
	if err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NearbySpotsResponse{Success: true, SpotsInRadius: res})
}
