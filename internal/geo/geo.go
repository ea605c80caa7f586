package geo

import "math"

const earthRadiusKm = 6371.0

// Point - координаты в градусах.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Bounds - прямоугольник широт и долгот.
type Bounds struct {
	South, West, North, East float64
}

// CebuBounds покрывает провинцию Себу вместе с островами Бантаян и Малапаскуа
// и южной оконечностью у Сантандера.
var CebuBounds = Bounds{South: 9.4, West: 123.0, North: 11.5, East: 124.5}

// CebuCenter - центр Себу-Сити, используется как позиция по умолчанию.
var CebuCenter = Point{Latitude: 10.3157, Longitude: 123.8854}

// Contains сообщает, лежит ли точка внутри прямоугольника (границы включительно).
func (b Bounds) Contains(p Point) bool {
	return p.Latitude >= b.South && p.Latitude <= b.North &&
		p.Longitude >= b.West && p.Longitude <= b.East
}

// Valid проверяет, что координаты имеют смысл на земном шаре.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude) &&
		p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceKm возвращает расстояние по большому кругу (формула гаверсинуса).
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
