package utils

import "math"

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Round1 округляет до одного знака после запятой
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
