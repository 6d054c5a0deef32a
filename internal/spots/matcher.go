// Package spots matches reported coordinates to parking spots and flips
// their occupied flag.
package spots

import (
	"garagehub/internal/garages"
	"garagehub/internal/shared/apperror"

	"github.com/shopspring/decimal"
)

// FindSpot returns the single candidate whose latitude and longitude are
// each within tolerance of the reported position, bounds included. No
// match yields SpotNotFound and more than one yields AmbiguousSpotMatch.
func FindSpot(candidates []garages.ParkingSpot, lat, lng, tolerance decimal.Decimal) (*garages.ParkingSpot, error) {
	var match *garages.ParkingSpot
	matches := 0

	for i := range candidates {
		c := &candidates[i]
		if !within(c.Latitude, lat, tolerance) || !within(c.Longitude, lng, tolerance) {
			continue
		}
		matches++
		if match == nil {
			match = c
		}
	}

	switch matches {
	case 0:
		return nil, apperror.Wrap(apperror.ErrSpotNotFound, "no spot within %s of (%s, %s)", tolerance, lat, lng)
	case 1:
		return match, nil
	default:
		return nil, apperror.Wrap(apperror.ErrAmbiguousSpotMatch, "%d spots within %s of (%s, %s)", matches, tolerance, lat, lng)
	}
}

func within(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
