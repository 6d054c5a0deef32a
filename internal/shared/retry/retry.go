// Package retry re-runs optimistic read-modify-write operations that lost a
// version race.
package retry

import (
	"context"
	"errors"
	"time"

	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/config"
	"garagehub/internal/shared/database"
	"garagehub/pkg/logger"

	"github.com/cenkalti/backoff/v5"
)

// Policy bounds the retry loop
type Policy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// PolicyFromConfig builds the policy from the parking configuration
func PolicyFromConfig(cfg config.ParkingConfig) Policy {
	tries := cfg.MaxRetries
	if tries < 1 {
		tries = 1
	}
	return Policy{
		MaxTries:        uint(tries),
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
	}
}

// OnConflict runs op until it succeeds, fails with something other than
// database.ErrVersionConflict, or runs out of tries. Exhaustion is reported
// as apperror.ErrTransientConflict, which callers never retry again. op must
// re-read the state it mutates.
func OnConflict[T any](ctx context.Context, p Policy, resource, id string, op func() (T, error)) (T, error) {
	attempt := 0

	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	}

	maxTries := p.MaxTries
	if maxTries == 0 {
		maxTries = 1
	}

	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, database.ErrVersionConflict) {
			logger.FromContext(ctx).LogCapacityConflict(ctx, resource, id, attempt)
			return v, err
		}
		return v, backoff.Permanent(err)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(maxTries),
	)

	// the last try returns its error as is, permanent wrapper included
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}

	if err != nil && errors.Is(err, database.ErrVersionConflict) {
		return res, apperror.Wrap(apperror.ErrTransientConflict, "%s %s after %d attempts: %v", resource, id, attempt, err)
	}
	return res, err
}
