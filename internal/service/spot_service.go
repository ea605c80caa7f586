package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ignatzorin/sugvoyage-backend/internal/geo"
	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/pkg/apperror"
)

// MaxSpotRadiusKm ограничивает радиус поиска.
const MaxSpotRadiusKm = 100.0

const spotsCacheTTL = 10 * time.Minute

// SpotRepository читает справочник мест.
type SpotRepository interface {
	List(ctx context.Context) ([]models.Spot, error)
}

// SpotService ищет места рядом с пользователем.
// Поиск линейный по закэшированному списку.
type SpotService struct {
	spots         SpotRepository
	cache         *CacheService
	defaultRadius float64
}

func NewSpotService(spots SpotRepository, cache *CacheService, defaultRadiusKm float64) *SpotService {
	return &SpotService{spots: spots, cache: cache, defaultRadius: defaultRadiusKm}
}

// List возвращает все места.
func (s *SpotService) List(ctx context.Context) ([]models.Spot, error) {
	value, err := s.cache.GetOrSet(ctx, spotsCacheKey, spotsCacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.spots.List(ctx)
	})
	if err != nil {
		return nil, apperror.Internal(err, "Error fetching spots")
	}
	return value.([]models.Spot), nil
}

// Nearby возвращает места в радиусе radiusKm от точки, ближайшие первыми.
// Нулевой радиус заменяется значением по умолчанию.
func (s *SpotService) Nearby(ctx context.Context, at geo.Point, radiusKm float64) (*models.SpotsInRadius, error) {
	if !at.Valid() {
		return nil, apperror.Validation("Invalid coordinates")
	}
	if radiusKm <= 0 {
		radiusKm = s.defaultRadius
	}
	if radiusKm > MaxSpotRadiusKm {
		return nil, apperror.Validation(fmt.Sprintf("Radius must not exceed %.0f km", MaxSpotRadiusKm))
	}

	spots, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	return SpotsWithin(spots, at, radiusKm), nil
}

// SpotsWithin отбирает места в радиусе и собирает уведомление.
func SpotsWithin(spots []models.Spot, at geo.Point, radiusKm float64) *models.SpotsInRadius {
	nearby := make([]models.NearbySpot, 0)
	for _, spot := range spots {
		d := geo.DistanceKm(at, geo.Point{Latitude: spot.Latitude, Longitude: spot.Longitude})
		if d <= radiusKm {
			nearby = append(nearby, models.NearbySpot{Spot: spot, DistanceKm: d})
		}
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	result := &models.SpotsInRadius{
		Count: len(nearby),
		Spots: nearby,
	}
	switch len(nearby) {
	case 0:
		result.Message = fmt.Sprintf("No spots within %.1f km", radiusKm)
	case 1:
		result.NearestSpot = nearby[0].Name
		result.Message = fmt.Sprintf("You are near %s (%.1f km away)", nearby[0].Name, nearby[0].DistanceKm)
	default:
		result.NearestSpot = nearby[0].Name
		result.Message = fmt.Sprintf("%d spots are near you. The closest is %s (%.1f km away)",
			len(nearby), nearby[0].Name, nearby[0].DistanceKm)
	}
	return result
}
