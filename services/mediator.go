package services

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"

	"chat-backend/domain/event"
)

// IRequestHandler executes one command against the store and returns the
// response together with the domain events harvested from the committed
// unit of work. Events are empty when the command rolled back or was a
// pure read.
type IRequestHandler interface {
	Handle(ctx context.Context, request any) (any, []event.DomainEvent, error)
}

// IEventHandler reacts to one committed (or ephemeral) domain event.
type IEventHandler interface {
	Handle(ctx context.Context, e event.DomainEvent) error
}

// Mediator routes commands to exactly one handler and fans events out to
// any number of handlers. Commands are validated before dispatch; events
// raised by a successful command are published before Send returns the
// response to the caller.
type Mediator struct {
	log      *slog.Logger
	validate *validator.Validate
	requests map[reflect.Type]IRequestHandler
	events   map[reflect.Type][]IEventHandler
	inflight sync.WaitGroup
}

func NewMediator(log *slog.Logger) *Mediator {
	return &Mediator{
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		requests: make(map[reflect.Type]IRequestHandler),
		events:   make(map[reflect.Type][]IEventHandler),
	}
}

// BindRequest registers the single handler for a command type. Binding the
// same type twice is a wiring bug and panics at startup.
func (m *Mediator) BindRequest(request any, handler IRequestHandler) {
	key := reflect.TypeOf(request)
	if _, bound := m.requests[key]; bound {
		panic(fmt.Sprintf("request %s already bound", key))
	}
	m.requests[key] = handler
}

// BindEvent appends handlers for an event type. Unlike commands, an event
// may have any number of listeners.
func (m *Mediator) BindEvent(e event.DomainEvent, handlers ...IEventHandler) {
	key := reflect.TypeOf(e)
	m.events[key] = append(m.events[key], handlers...)
}

// Send validates the command, dispatches it to its handler and publishes
// the events the handler harvested from its committed transaction.
func (m *Mediator) Send(ctx context.Context, request any) (any, error) {
	if err := m.validate.Struct(request); err != nil {
		return nil, err
	}
	handler, bound := m.requests[reflect.TypeOf(request)]
	if !bound {
		return nil, fmt.Errorf("no handler bound for request %T", request)
	}
	response, events, err := handler.Handle(ctx, request)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		m.Publish(ctx, e)
	}
	return response, nil
}

// Publish fans the event out to every bound handler, each on its own
// goroutine. A failing handler is logged and never prevents its siblings
// from running.
func (m *Mediator) Publish(ctx context.Context, e event.DomainEvent) {
	handlers := m.events[reflect.TypeOf(e)]
	if len(handlers) == 0 {
		m.log.Debug("no handler bound for event", "event", e.EventName())
		return
	}
	for _, handler := range handlers {
		m.inflight.Add(1)
		go func(h IEventHandler) {
			defer m.inflight.Done()
			if err := h.Handle(ctx, e); err != nil {
				m.log.Error("event handler failed",
					"event", e.EventName(),
					"handler", fmt.Sprintf("%T", h),
					"error", err)
			}
		}(handler)
	}
}

// Emit publishes an ephemeral event that never touched the store, such as
// a typing signal. It shares the routing table with Publish.
func (m *Mediator) Emit(ctx context.Context, e event.DomainEvent) {
	m.Publish(ctx, e)
}

// Wait blocks until every in-flight event handler has returned. Used on
// shutdown and by tests that need delivery to settle.
func (m *Mediator) Wait() {
	m.inflight.Wait()
}
