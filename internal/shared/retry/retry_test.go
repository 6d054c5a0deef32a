package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/config"
	"garagehub/internal/shared/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{MaxTries: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func TestOnConflictRetriesUntilSuccess(t *testing.T) {
	calls := 0
	v, err := OnConflict(context.Background(), fast, "sector", "A", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, database.ErrVersionConflict
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestOnConflictExhaustionIsTransient(t *testing.T) {
	calls := 0
	_, err := OnConflict(context.Background(), fast, "sector", "A", func() (int, error) {
		calls++
		return 0, database.ErrVersionConflict
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, apperror.ErrTransientConflict)
	assert.False(t, errors.Is(err, database.ErrVersionConflict))
}

func TestOnConflictStopsOnBusinessError(t *testing.T) {
	calls := 0
	_, err := OnConflict(context.Background(), fast, "sector", "A", func() (int, error) {
		calls++
		return 0, apperror.ErrSectorFull
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, apperror.ErrSectorFull)
	assert.False(t, errors.Is(err, apperror.ErrTransientConflict))
}

func TestPolicyFromConfigHasAtLeastOneTry(t *testing.T) {
	p := PolicyFromConfig(config.ParkingConfig{MaxRetries: 0})
	assert.Equal(t, uint(1), p.MaxTries)
}
