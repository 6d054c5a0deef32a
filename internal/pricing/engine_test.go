package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"garagehub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	strategies []PricingStrategy
	err        error
}

func (s *stubRepo) CreateStrategy(_ context.Context, strategy *PricingStrategy) error {
	s.strategies = append(s.strategies, *strategy)
	return nil
}

func (s *stubRepo) ListActiveStrategies(_ context.Context, _ *uuid.UUID) ([]PricingStrategy, error) {
	return s.strategies, s.err
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func band(garageID *uuid.UUID, min, max, mult string) PricingStrategy {
	return PricingStrategy{
		ID:           uuid.New(),
		GarageID:     garageID,
		MinOccupancy: d(min),
		MaxOccupancy: d(max),
		Multiplier:   d(mult),
		IsActive:     true,
	}
}

func defaultBands(garageID *uuid.UUID) []PricingStrategy {
	return []PricingStrategy{
		band(garageID, "0", "25", "0.90"),
		band(garageID, "25", "50", "1.00"),
		band(garageID, "50", "75", "1.10"),
		band(garageID, "75", "100.01", "1.25"),
	}
}

func TestOccupancyPercentage(t *testing.T) {
	cases := []struct {
		occupied, max int
		want          string
	}{
		{0, 0, "0"},
		{5, 0, "0"},
		{0, 10, "0"},
		{5, 10, "50"},
		{1, 3, "33.33"},
		{2, 3, "66.67"},
		{1, 8, "12.5"},
		{10, 10, "100"},
	}
	for _, tc := range cases {
		got := OccupancyPercentage(tc.occupied, tc.max)
		assert.True(t, d(tc.want).Equal(got), "%d/%d: got %s", tc.occupied, tc.max, got)
	}
}

func TestApplyDynamicMultiplierAtHalfOccupancy(t *testing.T) {
	engine := NewEngine(&stubRepo{strategies: defaultBands(nil)}, 30)

	price, err := engine.ApplyDynamicMultiplier(context.Background(), uuid.New(), d("10.00"), d("50.00"))
	require.NoError(t, err)
	assert.Equal(t, "11.00", price.StringFixed(2))
}

func TestApplyDynamicMultiplierBandEdges(t *testing.T) {
	engine := NewEngine(&stubRepo{strategies: defaultBands(nil)}, 30)
	ctx := context.Background()
	garageID := uuid.New()

	cases := map[string]string{
		"0":     "9.00",
		"24.99": "9.00",
		"25":    "10.00",
		"74.99": "11.00",
		"75":    "12.50",
		"100":   "12.50",
	}
	for pct, want := range cases {
		got, err := engine.ApplyDynamicMultiplier(ctx, garageID, d("10.00"), d(pct))
		require.NoError(t, err, pct)
		assert.Equal(t, want, got.StringFixed(2), pct)
	}
}

func TestApplyDynamicMultiplierRoundsHalfUp(t *testing.T) {
	engine := NewEngine(&stubRepo{strategies: []PricingStrategy{band(nil, "0", "100.01", "1.25")}}, 30)

	got, err := engine.ApplyDynamicMultiplier(context.Background(), uuid.New(), d("10.10"), d("10"))
	require.NoError(t, err)
	// 10.10 * 1.25 = 12.625
	assert.Equal(t, "12.63", got.StringFixed(2))
}

func TestGarageStrategiesShadowGlobal(t *testing.T) {
	garageID := uuid.New()
	strategies := append(defaultBands(nil), band(&garageID, "0", "100.01", "2.00"))
	engine := NewEngine(&stubRepo{strategies: strategies}, 30)

	got, err := engine.ApplyDynamicMultiplier(context.Background(), garageID, d("10.00"), d("50"))
	require.NoError(t, err)
	assert.Equal(t, "20.00", got.StringFixed(2))

	other, err := engine.ApplyDynamicMultiplier(context.Background(), uuid.New(), d("10.00"), d("50"))
	require.NoError(t, err)
	assert.Equal(t, "11.00", other.StringFixed(2))
}

func TestNoPricingStrategy(t *testing.T) {
	engine := NewEngine(&stubRepo{strategies: []PricingStrategy{band(nil, "0", "50", "1.00")}}, 30)

	_, err := engine.ApplyDynamicMultiplier(context.Background(), uuid.New(), d("10.00"), d("75"))
	assert.ErrorIs(t, err, apperror.ErrNoPricingStrategy)
}

func TestStrategyLookupFailureIsNotBusinessError(t *testing.T) {
	engine := NewEngine(&stubRepo{err: errors.New("db down")}, 30)

	_, err := engine.ApplyDynamicMultiplier(context.Background(), uuid.New(), d("10.00"), d("10"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

func TestCalculateFee(t *testing.T) {
	engine := NewEngine(&stubRepo{}, 30)
	entry := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		after time.Duration
		price string
		want  string
	}{
		{"immediate exit", 0, "10.00", "0.00"},
		{"within free period", 30 * time.Minute, "10.00", "0.00"},
		{"free period plus seconds", 30*time.Minute + 59*time.Second, "10.00", "0.00"},
		{"first chargeable minute", 31 * time.Minute, "10.00", "10.00"},
		{"exactly one hour chargeable", 90 * time.Minute, "10.00", "10.00"},
		{"ninety one minutes", 91 * time.Minute, "10.00", "20.00"},
		{"odd price", 3 * time.Hour, "9.35", "28.05"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, err := engine.CalculateFee(entry, entry.Add(tc.after), d(tc.price))
			require.NoError(t, err)
			assert.Equal(t, tc.want, fee.StringFixed(2))
		})
	}
}

func TestCalculateFeeRejectsBadInput(t *testing.T) {
	engine := NewEngine(&stubRepo{}, 30)
	now := time.Now()

	_, err := engine.CalculateFee(now, now.Add(-time.Second), d("10"))
	assert.ErrorIs(t, err, apperror.ErrInvalidTimeRange)

	_, err = engine.CalculateFee(time.Time{}, now, d("10"))
	assert.ErrorIs(t, err, apperror.ErrMissingArgument)

	_, err = engine.CalculateFee(now, time.Time{}, d("10"))
	assert.ErrorIs(t, err, apperror.ErrMissingArgument)
}
