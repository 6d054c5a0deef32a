package pricing

import (
	"context"
	"fmt"
	"time"

	"garagehub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine resolves dynamic prices and computes parking fees
type Engine struct {
	repo        Repository
	freeMinutes int64
}

// NewEngine creates a pricing engine. freeMinutes is the grace period that
// is never charged.
func NewEngine(repo Repository, freeMinutes int) *Engine {
	if freeMinutes < 0 {
		freeMinutes = 0
	}
	return &Engine{repo: repo, freeMinutes: int64(freeMinutes)}
}

// OccupancyPercentage returns occupied/max as a percentage with two
// decimals, rounded half up. A non-positive max yields zero.
func OccupancyPercentage(occupied, max int) decimal.Decimal {
	if max <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(occupied)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(max)), 2)
}

// StrategyFor picks the band containing pct. Strategies owned by the garage
// shadow the global ones.
func (e *Engine) StrategyFor(ctx context.Context, garageID uuid.UUID, pct decimal.Decimal) (*PricingStrategy, error) {
	strategies, err := e.repo.ListActiveStrategies(ctx, &garageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing strategies: %w", err)
	}

	var own, global []PricingStrategy
	for _, s := range strategies {
		if s.IsGlobal() {
			global = append(global, s)
		} else if *s.GarageID == garageID {
			own = append(own, s)
		}
	}

	candidates := global
	if len(own) > 0 {
		candidates = own
	}

	for i := range candidates {
		if candidates[i].Contains(pct) {
			return &candidates[i], nil
		}
	}
	return nil, apperror.Wrap(apperror.ErrNoPricingStrategy, "occupancy %s%%", pct.StringFixed(2))
}

// ApplyDynamicMultiplier returns basePrice scaled by the strategy matching
// pct, rounded to cents.
func (e *Engine) ApplyDynamicMultiplier(ctx context.Context, garageID uuid.UUID, basePrice, pct decimal.Decimal) (decimal.Decimal, error) {
	strategy, err := e.StrategyFor(ctx, garageID, pct)
	if err != nil {
		return decimal.Zero, err
	}
	return basePrice.Mul(strategy.Multiplier).Round(2), nil
}

// CalculateFee charges every started hour after the free period at
// priceAtEntry.
func (e *Engine) CalculateFee(entryTime, exitTime time.Time, priceAtEntry decimal.Decimal) (decimal.Decimal, error) {
	if entryTime.IsZero() {
		return decimal.Zero, apperror.Wrap(apperror.ErrMissingArgument, "entry time is required")
	}
	if exitTime.IsZero() {
		return decimal.Zero, apperror.Wrap(apperror.ErrMissingArgument, "exit time is required")
	}
	if exitTime.Before(entryTime) {
		return decimal.Zero, apperror.Wrap(apperror.ErrInvalidTimeRange, "entry %s, exit %s",
			entryTime.Format(time.RFC3339), exitTime.Format(time.RFC3339))
	}

	totalMinutes := int64(exitTime.Sub(entryTime) / time.Minute)
	chargeable := totalMinutes - e.freeMinutes
	if chargeable <= 0 {
		return decimal.Zero, nil
	}

	hours := (chargeable + 59) / 60
	return decimal.NewFromInt(hours).Mul(priceAtEntry).Round(2), nil
}
