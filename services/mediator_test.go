package services

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-backend/domain/event"
)

type stubHandler struct {
	response any
	err      error
}

func (h stubHandler) Handle(context.Context, any) (any, []event.DomainEvent, error) {
	return h.response, nil, h.err
}

type countingEventHandler struct {
	calls atomic.Int32
	err   error
}

func (h *countingEventHandler) Handle(context.Context, event.DomainEvent) error {
	h.calls.Add(1)
	return h.err
}

func TestMediator_BindRequestTwicePanics(t *testing.T) {
	m := NewMediator(logs.GetLoggerFromLevel(slog.LevelError))
	m.BindRequest(Tapping{}, stubHandler{})
	require.Panics(t, func() {
		m.BindRequest(Tapping{}, stubHandler{})
	})
}

func TestMediator_UnboundRequestFails(t *testing.T) {
	m := NewMediator(logs.GetLoggerFromLevel(slog.LevelError))
	_, err := m.Send(context.Background(), Tapping{ChatID: uuid.New(), AccountID: "u1"})
	require.Error(t, err)
}

func TestMediator_ValidatesBeforeDispatch(t *testing.T) {
	m := NewMediator(logs.GetLoggerFromLevel(slog.LevelError))
	m.BindRequest(Tapping{}, stubHandler{})

	// AccountID is required, so the handler must never run.
	_, err := m.Send(context.Background(), Tapping{ChatID: uuid.New()})
	require.Error(t, err)
}

func TestMediator_FailingEventHandlerDoesNotStarveSiblings(t *testing.T) {
	req := require.New(t)
	m := NewMediator(logs.GetLoggerFromLevel(slog.LevelError))

	failing := &countingEventHandler{err: context.DeadlineExceeded}
	healthy := &countingEventHandler{}
	m.BindEvent(event.ChatDeleted{}, failing, healthy)

	m.Publish(context.Background(), event.ChatDeleted{DeletedBy: "u1"})
	m.Wait()

	req.EqualValues(1, failing.calls.Load())
	req.EqualValues(1, healthy.calls.Load())
}
