package spots

import (
	"testing"

	"garagehub/internal/garages"
	"garagehub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tolerance = decimal.RequireFromString("0.000001")

func spotAt(lat, lng string) garages.ParkingSpot {
	return garages.ParkingSpot{
		ID:        uuid.New(),
		Latitude:  decimal.RequireFromString(lat),
		Longitude: decimal.RequireFromString(lng),
	}
}

func coords(lat, lng string) (decimal.Decimal, decimal.Decimal) {
	return decimal.RequireFromString(lat), decimal.RequireFromString(lng)
}

func TestFindSpotWithinTolerance(t *testing.T) {
	target := spotAt("-23.561684", "-46.655981")
	candidates := []garages.ParkingSpot{spotAt("-23.561584", "-46.655881"), target}

	lat, lng := coords("-23.5616845", "-46.6559815")
	got, err := FindSpot(candidates, lat, lng, tolerance)
	require.NoError(t, err)
	assert.Equal(t, target.ID, got.ID)
}

func TestFindSpotBoundaryIsInclusive(t *testing.T) {
	target := spotAt("-23.561684", "-46.655981")

	lat, lng := coords("-23.561685", "-46.655980")
	got, err := FindSpot([]garages.ParkingSpot{target}, lat, lng, tolerance)
	require.NoError(t, err)
	assert.Equal(t, target.ID, got.ID)

	lat, lng = coords("-23.5616851", "-46.655981")
	_, err = FindSpot([]garages.ParkingSpot{target}, lat, lng, tolerance)
	assert.ErrorIs(t, err, apperror.ErrSpotNotFound)
}

func TestFindSpotChecksEachAxis(t *testing.T) {
	target := spotAt("-23.561684", "-46.655981")

	// latitude matches exactly, longitude is off
	lat, lng := coords("-23.561684", "-46.655990")
	_, err := FindSpot([]garages.ParkingSpot{target}, lat, lng, tolerance)
	assert.ErrorIs(t, err, apperror.ErrSpotNotFound)
}

func TestFindSpotFarAway(t *testing.T) {
	lat, lng := coords("-23.000000", "-46.000000")
	_, err := FindSpot([]garages.ParkingSpot{spotAt("-23.561684", "-46.655981")}, lat, lng, tolerance)
	assert.ErrorIs(t, err, apperror.ErrSpotNotFound)
}

func TestFindSpotAmbiguous(t *testing.T) {
	candidates := []garages.ParkingSpot{
		spotAt("-23.561684", "-46.655981"),
		spotAt("-23.5616845", "-46.6559805"),
	}

	lat, lng := coords("-23.561684", "-46.655981")
	_, err := FindSpot(candidates, lat, lng, tolerance)
	assert.ErrorIs(t, err, apperror.ErrAmbiguousSpotMatch)
	assert.False(t, candidates[0].IsOccupied)
	assert.False(t, candidates[1].IsOccupied)
}

func TestFindSpotNoCandidates(t *testing.T) {
	lat, lng := coords("0", "0")
	_, err := FindSpot(nil, lat, lng, tolerance)
	assert.ErrorIs(t, err, apperror.ErrSpotNotFound)
}
