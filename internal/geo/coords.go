// Package geo validates coordinate input and derives the bounding box used
// by radius searches.
package geo

import (
	"math"

	"civicreport-be/internal/models"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// MaxRadiusKm caps radius searches; anything wider degenerates into a
	// full scan the listing endpoint already covers.
	MaxRadiusKm = 50.0

	// kmPerDegree approximates one degree of latitude. It is applied to
	// longitude as well, so the box is not square in real distance at high
	// latitudes. That drift is accepted in exchange for a single indexable
	// range predicate.
	kmPerDegree = 111.0
)

// ValidateCoordinates checks that lat and lng are real numbers inside the
// WGS84 bounds. Pure, no side effects.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return models.NewValidationError("latitude", "must be a number")
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) {
		return models.NewValidationError("longitude", "must be a number")
	}
	if lat < MinLatitude || lat > MaxLatitude {
		return models.NewValidationError("latitude", "must be between -90 and 90")
	}
	if lng < MinLongitude || lng > MaxLongitude {
		return models.NewValidationError("longitude", "must be between -180 and 180")
	}
	return nil
}

// ValidateRadius checks that km is in (0, MaxRadiusKm].
func ValidateRadius(km float64) error {
	if math.IsNaN(km) || math.IsInf(km, 0) || km <= 0 || km > MaxRadiusKm {
		return models.NewValidationError("radius", "must be greater than 0 and at most 50 km")
	}
	return nil
}

// BoundingBox is the rectangular lat/lng range approximating a circular
// search radius.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoxAround expands radiusKm symmetrically around the center on both axes
// using the kmPerDegree approximation. Callers must validate the inputs
// first.
func BoxAround(lat, lng, radiusKm float64) BoundingBox {
	degrees := radiusKm / kmPerDegree
	return BoundingBox{
		MinLat: lat - degrees,
		MaxLat: lat + degrees,
		MinLng: lng - degrees,
		MaxLng: lng + degrees,
	}
}
