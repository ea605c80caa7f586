package models

import (
	"time"

	"github.com/google/uuid"
)

// Spot - точка интереса на карте Себу.
type Spot struct {
	ID          uuid.UUID `db:"id" json:"_id"`
	Name        string    `db:"name" json:"name"`
	Category    string    `db:"category" json:"category"`
	City        string    `db:"city" json:"city"`
	Description string    `db:"description" json:"description"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// NearbySpot - место с расстоянием до пользователя.
type NearbySpot struct {
	Spot
	DistanceKm float64 `json:"distanceKm"`
}

// SpotsInRadius - уведомление о местах рядом с пользователем.
type SpotsInRadius struct {
	Message     string       `json:"message"`
	Count       int          `json:"count"`
	NearestSpot string       `json:"nearestSpot"`
	Spots       []NearbySpot `json:"spots"`
}
