package webhook

import (
	"context"
	"time"

	"garagehub/internal/sessions"
	"garagehub/internal/shared/apperror"
	"garagehub/pkg/metrics"
)

// Instrument wraps d so every dispatched event is counted by outcome.
// The webhook and the Kafka consumer share the wrapped dispatcher.
func Instrument(d Dispatcher, rec *metrics.Recorder) Dispatcher {
	if rec == nil {
		return d
	}
	return &instrumentedDispatcher{next: d, rec: rec}
}

type instrumentedDispatcher struct {
	next Dispatcher
	rec  *metrics.Recorder
}

func (i *instrumentedDispatcher) Dispatch(ctx context.Context, ev sessions.Event) (*sessions.Result, error) {
	start := time.Now()
	res, err := i.next.Dispatch(ctx, ev)

	outcome := "OK"
	if err != nil {
		outcome = "ERROR"
		if code, ok := apperror.CodeOf(err); ok {
			outcome = string(code)
		}
	}
	i.rec.ObserveEvent(string(ev.Type()), outcome, time.Since(start))

	return res, err
}
