package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"garagehub/internal/sessions"
	"garagehub/internal/shared/apperror"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	errs  []error
	calls int
}

func (s *stubDispatcher) Dispatch(_ context.Context, ev sessions.Event) (*sessions.Result, error) {
	s.calls++
	if len(s.errs) == 0 {
		return &sessions.Result{Plate: ev.Plate()}, nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return nil, err
}

// fakeSession records the offsets the handler marks
type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func claimOf(msgs ...*sarama.ConsumerMessage) *fakeClaim {
	ch := make(chan *sarama.ConsumerMessage, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)
	return &fakeClaim{messages: ch}
}

func newTestHandler(d Dispatcher) *consumerGroupHandler {
	return newConsumerGroupHandler(d, &ConsumerConfig{MaxRetries: 2, RetryBackoffDuration: time.Millisecond}, 0)
}

const exitEvent = `{"event_type":"EXIT","license_plate":"ABC1234","exit_time":"2025-01-01T12:00:00Z"}`

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "garage-events", Value: []byte(value)}
}

func messageAt(offset int64, value string) *sarama.ConsumerMessage {
	m := message(value)
	m.Offset = offset
	return m
}

func TestProcessMessageCommitsSuccess(t *testing.T) {
	d := &stubDispatcher{}
	assert.NoError(t, newTestHandler(d).processMessage(context.Background(), message(exitEvent)))
	assert.Equal(t, 1, d.calls)
}

func TestProcessMessageDropsBadPayloads(t *testing.T) {
	d := &stubDispatcher{}
	h := newTestHandler(d)

	assert.NoError(t, h.processMessage(context.Background(), message(`not json`)))
	assert.NoError(t, h.processMessage(context.Background(), message(`{"event_type":"EXIT","license_plate":"ABC1234"}`)))
	assert.Equal(t, 0, d.calls)
}

func TestProcessMessageCommitsBusinessRejection(t *testing.T) {
	d := &stubDispatcher{errs: []error{apperror.ErrNoActiveSession}}
	assert.NoError(t, newTestHandler(d).processMessage(context.Background(), message(exitEvent)))
	assert.Equal(t, 1, d.calls)
}

func TestProcessMessageRetriesTransientConflict(t *testing.T) {
	d := &stubDispatcher{errs: []error{apperror.ErrTransientConflict, apperror.ErrTransientConflict}}
	assert.NoError(t, newTestHandler(d).processMessage(context.Background(), message(exitEvent)))
	assert.Equal(t, 3, d.calls)
}

func TestProcessMessageRetriesInfrastructureFailure(t *testing.T) {
	d := &stubDispatcher{errs: []error{errors.New("connection refused")}}
	assert.NoError(t, newTestHandler(d).processMessage(context.Background(), message(exitEvent)))
	assert.Equal(t, 2, d.calls)
}

func TestProcessMessageReturnsExhaustedTransientConflict(t *testing.T) {
	d := &stubDispatcher{errs: []error{
		apperror.ErrTransientConflict,
		apperror.ErrTransientConflict,
		apperror.ErrTransientConflict,
	}}

	err := newTestHandler(d).processMessage(context.Background(), message(exitEvent))
	assert.ErrorIs(t, err, apperror.ErrTransientConflict)
	assert.Equal(t, 3, d.calls)
}

func TestConsumeClaimMarksProcessedMessages(t *testing.T) {
	d := &stubDispatcher{errs: []error{apperror.ErrNoActiveSession}}
	session := &fakeSession{ctx: context.Background()}

	err := newTestHandler(d).ConsumeClaim(session, claimOf(
		messageAt(10, exitEvent),
		messageAt(11, `not json`),
		messageAt(12, exitEvent),
	))
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, session.marked)
}

func TestConsumeClaimStopsBeforeUnappliedMessage(t *testing.T) {
	down := errors.New("connection refused")
	d := &stubDispatcher{errs: []error{down, down, down}}
	session := &fakeSession{ctx: context.Background()}

	err := newTestHandler(d).ConsumeClaim(session, claimOf(
		messageAt(10, exitEvent),
		messageAt(11, exitEvent),
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, down)
	assert.Empty(t, session.marked, "nothing past offset 10 may be committed")
	assert.Equal(t, 3, d.calls, "offset 11 must wait for redelivery of 10")
}

func TestConsumeClaimDoesNotCommitExhaustedConflict(t *testing.T) {
	d := &stubDispatcher{errs: []error{
		apperror.ErrTransientConflict,
		apperror.ErrTransientConflict,
		apperror.ErrTransientConflict,
	}}
	session := &fakeSession{ctx: context.Background()}

	err := newTestHandler(d).ConsumeClaim(session, claimOf(
		messageAt(10, exitEvent),
		messageAt(11, exitEvent),
	))
	assert.ErrorIs(t, err, apperror.ErrTransientConflict)
	assert.Empty(t, session.marked)
}

func TestConsumeClaimReturnsOnSessionEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := &fakeSession{ctx: ctx}

	err := newTestHandler(&stubDispatcher{}).ConsumeClaim(session, &fakeClaim{messages: make(chan *sarama.ConsumerMessage)})
	assert.NoError(t, err)
	assert.Empty(t, session.marked)
}
