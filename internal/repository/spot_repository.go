package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
)

// SpotRepository читает справочник мест из таблицы spots.
type SpotRepository struct {
	db *sqlx.DB
}

func NewSpotRepository(db *sqlx.DB) *SpotRepository {
	return &SpotRepository{db: db}
}

// List возвращает все места, отсортированные по названию.
func (r *SpotRepository) List(ctx context.Context) ([]models.Spot, error) {
	spots := []models.Spot{}
	query := `SELECT id, name, category, city, description, latitude, longitude, created_at FROM spots ORDER BY name`
	if err := r.db.SelectContext(ctx, &spots, query); err != nil {
		return nil, fmt.Errorf("spot repository: list %w", err)
	}
	return spots, nil
}
